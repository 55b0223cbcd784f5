package payment

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the status of a payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Payment represents a captured payment for an order. Immutable once
// succeeded; the refund engine reads it and never mutates it.
type Payment struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID          uuid.UUID `json:"store_id" gorm:"type:uuid;not null;index"`
	OrderID          uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	Provider         string    `json:"provider" gorm:"not null"`
	ProviderChargeID string    `json:"-" gorm:"index"` // Provider capture reference
	Amount           int64     `json:"amount"`         // In minor currency units
	Currency         string    `json:"currency" gorm:"default:usd"`
	Status           Status    `json:"status" gorm:"not null;default:pending"`
	SucceededAt      *time.Time `json:"succeeded_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName returns the database table name.
func (Payment) TableName() string {
	return "payments"
}

// IsSucceeded returns true if the payment succeeded.
func (p *Payment) IsSucceeded() bool {
	return p.Status == StatusSucceeded
}
