package inventory

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the lifecycle of an inventory reservation.
type ReservationStatus string

const (
	ReservationStatusReserved ReservationStatus = "reserved"
	ReservationStatusConsumed ReservationStatus = "consumed"
	ReservationStatusReleased ReservationStatus = "released"
)

// Reservation links an order line to the supplier/variant that fulfilled
// it. Created at checkout; the refund engine only reads reservations to
// identify which supplier stock pool to credit back.
type Reservation struct {
	ID         uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID    uuid.UUID         `json:"store_id" gorm:"type:uuid;not null;index:idx_reservation_order"`
	OrderID    uuid.UUID         `json:"order_id" gorm:"type:uuid;not null;index:idx_reservation_order"`
	ProductID  uuid.UUID         `json:"product_id" gorm:"type:uuid;not null"`
	VariantID  uuid.UUID         `json:"variant_id" gorm:"type:uuid;not null"`
	SupplierID uuid.UUID         `json:"supplier_id" gorm:"type:uuid;not null"`
	Quantity   int               `json:"quantity" gorm:"not null"`
	Status     ReservationStatus `json:"status" gorm:"not null;default:reserved"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// TableName returns the database table name.
func (Reservation) TableName() string {
	return "inventory_reservations"
}

// SupplierVariantInventory tracks the stock counters for one supplier's
// variant within a store.
type SupplierVariantInventory struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID        uuid.UUID `json:"store_id" gorm:"type:uuid;not null;uniqueIndex:idx_supplier_variant"`
	SupplierID     uuid.UUID `json:"supplier_id" gorm:"type:uuid;not null;uniqueIndex:idx_supplier_variant"`
	VariantID      uuid.UUID `json:"variant_id" gorm:"type:uuid;not null;uniqueIndex:idx_supplier_variant"`
	AvailableStock int       `json:"available_stock" gorm:"not null;default:0"`
	TotalStock     int       `json:"total_stock" gorm:"not null;default:0"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (SupplierVariantInventory) TableName() string {
	return "supplier_variant_inventories"
}
