package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for payment data access.
type Repository interface {
	// GetSucceededByOrder returns the successful payment for an order.
	GetSucceededByOrder(ctx context.Context, storeID, orderID uuid.UUID) (*Payment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new payment repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSucceededByOrder(ctx context.Context, storeID, orderID uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND order_id = ? AND status = ?", storeID, orderID, StatusSucceeded).
		Order("succeeded_at DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get succeeded payment: %w", err)
	}
	return &p, nil
}
