package order

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle status of an order.
type Status string

const (
	StatusCreated   Status = "created"
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusFulfilled Status = "fulfilled"
	StatusCanceled  Status = "canceled"
	StatusRefunded  Status = "refunded"
)

// Order represents a purchase order. The refund engine only reads orders;
// it never transitions one back from paid.
type Order struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   uuid.UUID `json:"store_id" gorm:"type:uuid;not null;index"`
	OrderNo   string    `json:"order_no" gorm:"uniqueIndex;not null"`
	Status    Status    `json:"status" gorm:"not null;default:created"`
	Total     int64     `json:"total"` // In minor currency units
	Currency  string    `json:"currency" gorm:"default:usd"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Items []Item `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "orders"
}

// IsPaid returns true if the order has been paid.
func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}

// FindItem returns the order line for the given product and optional
// variant. With a variant the match is exact; without one the product
// must appear on exactly one line, otherwise nil is returned so callers
// never refund an arbitrary variant.
func (o *Order) FindItem(productID uuid.UUID, variantID *uuid.UUID) *Item {
	var match *Item
	for i := range o.Items {
		item := &o.Items[i]
		if item.ProductID != productID {
			continue
		}
		if variantID != nil {
			if item.VariantID != nil && *item.VariantID == *variantID {
				return item
			}
			continue
		}
		if match != nil {
			return nil
		}
		match = item
	}
	return match
}

// CountProductLines returns how many order lines carry the product.
func (o *Order) CountProductLines(productID uuid.UUID) int {
	var n int
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			n++
		}
	}
	return n
}

// Item represents a line item in an order.
type Item struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID  `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID  `json:"product_id" gorm:"type:uuid;not null"`
	VariantID *uuid.UUID `json:"variant_id,omitempty" gorm:"type:uuid"`
	Quantity  int        `json:"quantity" gorm:"default:1"`
	UnitPrice int64      `json:"unit_price"` // In minor currency units
}

// TableName returns the database table name.
func (Item) TableName() string {
	return "order_items"
}
