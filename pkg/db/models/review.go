package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/activity-seeder/pkg/types"
)

// Review is written against a received order.
type Review struct {
	ID         string    `bson:"_id,omitempty" json:"id" gorm:"column:id;type:text;primaryKey"`
	OrderID    types.Ref `bson:"order_id" json:"order_id" gorm:"column:order_id;type:text;not null;uniqueIndex"`
	CustomerID types.Ref `bson:"customer_id" json:"customer_id" gorm:"column:customer_id;type:text;not null;index"`
	VendorID   types.Ref `bson:"vendor_id" json:"vendor_id" gorm:"column:vendor_id;type:text;not null;index"`
	Rating     int       `bson:"rating" json:"rating" gorm:"column:rating;not null;index"`
	Title      string    `bson:"title" json:"title" gorm:"column:title;not null"`
	Body       string    `bson:"body" json:"body" gorm:"column:body;not null"`
	ReviewDate time.Time `bson:"review_date" json:"review_date" gorm:"column:review_date;not null;index"`
}

func (r Review) DocumentID() string { return r.ID }

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
