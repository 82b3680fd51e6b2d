package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/activity-seeder/pkg/types"
)

// Vendor is a restaurant that fulfils generated orders.
type Vendor struct {
	ID       string             `bson:"_id,omitempty" json:"id" gorm:"column:id;type:text;primaryKey"`
	Name     string             `bson:"name" json:"name" gorm:"column:name;not null;index"`
	Location types.Location     `bson:"location" json:"location" gorm:"column:location;type:jsonb;serializer:json"`
	Phones   []string           `bson:"phones" json:"phones" gorm:"column:phones;type:jsonb;serializer:json"`
	Hours    types.OpeningHours `bson:"hours" json:"hours" gorm:"column:hours;type:jsonb;serializer:json"`
}

func (v Vendor) DocumentID() string { return v.ID }

func (v *Vendor) BeforeCreate(*gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
