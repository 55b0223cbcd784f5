package refund

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefleet/server/internal/module/payment/provider"
	"github.com/storefleet/server/internal/utils/requestctx"
)

// Type distinguishes full refunds from partial ones.
type Type string

const (
	TypeFull    Type = "full"
	TypePartial Type = "partial"
)

// Valid reports whether the type is known.
func (t Type) Valid() bool {
	return t == TypeFull || t == TypePartial
}

// Refund is the authoritative record of one monetary reversal. Immutable
// once created, except for the InventoryRestored flag.
type Refund struct {
	ID                uuid.UUID             `json:"id" gorm:"type:uuid;primaryKey"`
	RefundNo          string                `json:"refund_no" gorm:"uniqueIndex;not null"`
	StoreID           uuid.UUID             `json:"store_id" gorm:"type:uuid;not null;index"`
	OrderID           uuid.UUID             `json:"order_id" gorm:"type:uuid;not null;index"`
	PaymentID         uuid.UUID             `json:"payment_id" gorm:"type:uuid;not null;index"`
	Provider          string                `json:"provider" gorm:"not null"`
	Type              Type                  `json:"type" gorm:"not null"`
	Reason            string                `json:"reason,omitempty"`
	Amount            int64                 `json:"amount"` // In minor currency units
	Currency          string                `json:"currency" gorm:"default:usd"`
	ProviderRefundID  string                `json:"provider_refund_id" gorm:"index"`
	ProviderStatus    provider.RefundStatus `json:"provider_status" gorm:"not null"`
	InventoryRestored bool                  `json:"inventory_restored" gorm:"default:false"`
	RequestedBy       uuid.UUID             `json:"requested_by" gorm:"type:uuid;not null"`
	RequestedByRole   requestctx.Role       `json:"requested_by_role" gorm:"not null"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`

	// Relations
	Items []Item `json:"items,omitempty" gorm:"foreignKey:RefundID"`
}

// TableName returns the database table name.
func (Refund) TableName() string {
	return "refunds"
}

// Item is one refunded order line.
type Item struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RefundID  uuid.UUID  `json:"refund_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID  `json:"product_id" gorm:"type:uuid;not null"`
	VariantID *uuid.UUID `json:"variant_id,omitempty" gorm:"type:uuid"`
	Quantity  int        `json:"quantity" gorm:"not null"`
	UnitPrice int64      `json:"unit_price"` // In minor currency units
	Amount    int64      `json:"amount"`     // UnitPrice × Quantity, minor units
}

// TableName returns the database table name.
func (Item) TableName() string {
	return "refund_items"
}

// CompensationKind identifies which corrective action a task performs.
type CompensationKind string

const (
	CompensationInventoryRestore CompensationKind = "inventory_restore"
	CompensationSplitReversal    CompensationKind = "split_reversal"
)

// TaskStatus is the lifecycle state of a compensation task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusFailed    TaskStatus = "failed" // Terminal: attempts exhausted
)

// CompensationTask is one durable unit of post-refund work. Tasks are
// written in the same transaction as the Refund so a crash between the
// provider call and the compensations leaves a visible, retryable entry
// instead of a silent inconsistency.
type CompensationTask struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   uuid.UUID        `json:"store_id" gorm:"type:uuid;not null;index"`
	RefundID  uuid.UUID        `json:"refund_id" gorm:"type:uuid;not null;index"`
	OrderID   uuid.UUID        `json:"order_id" gorm:"type:uuid;not null"`
	Kind      CompensationKind `json:"kind" gorm:"not null"`
	Status    TaskStatus       `json:"status" gorm:"not null;default:pending;index"`
	Attempts  int              `json:"attempts" gorm:"default:0"`
	LastError string           `json:"last_error,omitempty"`
	NextRunAt time.Time        `json:"next_run_at" gorm:"index"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TableName returns the database table name.
func (CompensationTask) TableName() string {
	return "refund_compensation_tasks"
}
