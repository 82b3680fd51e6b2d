package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/activity-seeder/pkg/enums"
	"github.com/angelmondragon/activity-seeder/pkg/types"
)

// Order is a generated purchase. Items are embedded and immutable once written.
// References to other documents are types.Ref so they keep the BSON type of
// the _id they point at.
type Order struct {
	ID         string            `bson:"_id,omitempty" json:"id" gorm:"column:id;type:text;primaryKey"`
	CustomerID types.Ref         `bson:"customer_id" json:"customer_id" gorm:"column:customer_id;type:text;not null;index"`
	VendorID   types.Ref         `bson:"vendor_id" json:"vendor_id" gorm:"column:vendor_id;type:text;not null;index"`
	Items      []LineItem        `bson:"items,omitempty" json:"items,omitempty" gorm:"column:items;type:jsonb;serializer:json"`
	Status     enums.OrderStatus `bson:"status" json:"status" gorm:"column:status;type:text;not null;index"`
	Total      types.Money       `bson:"total" json:"total" gorm:"column:total;type:numeric(12,2);not null"`
	OrderDate  time.Time         `bson:"order_date" json:"order_date" gorm:"column:order_date;not null;index"`
}

// LineItem snapshots the unit price at order time.
type LineItem struct {
	ProductID types.Ref   `bson:"product_id" json:"product_id"`
	Qty       int         `bson:"qty" json:"qty"`
	UnitPrice types.Money `bson:"unit_price" json:"unit_price"`
}

func (o Order) DocumentID() string { return o.ID }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Subtotal returns qty × unit price for the line.
func (li LineItem) Subtotal() types.Money {
	return li.UnitPrice.Times(li.Qty)
}

// ComputeTotal sums the line subtotals and rounds to cents.
func ComputeTotal(items []LineItem) types.Money {
	var sum types.Money
	for _, item := range items {
		sum = sum.Plus(item.Subtotal())
	}
	return sum.Cents()
}
