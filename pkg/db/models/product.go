package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/activity-seeder/pkg/types"
)

// Product is a catalog listing. Price is the current unit price; orders copy
// it into their line items.
type Product struct {
	ID          string      `bson:"_id,omitempty" json:"id" gorm:"column:id;type:text;primaryKey"`
	Name        string      `bson:"name" json:"name" gorm:"column:name;not null;index"`
	Description string      `bson:"description" json:"description" gorm:"column:description"`
	PrepMinutes int         `bson:"prep_minutes" json:"prep_minutes" gorm:"column:prep_minutes;not null;default:0"`
	Ingredients []string    `bson:"ingredients" json:"ingredients" gorm:"column:ingredients;type:jsonb;serializer:json"`
	Active      bool        `bson:"active" json:"active" gorm:"column:active;not null;default:true;index"`
	Price       types.Money `bson:"price" json:"price" gorm:"column:price;type:numeric(12,2);not null"`
}

func (p Product) DocumentID() string { return p.ID }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
