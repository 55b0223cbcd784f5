package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for split ledger data access.
type Repository interface {
	// ListSplitEntries returns the original (non-reversal) entries for an order.
	ListSplitEntries(ctx context.Context, storeID, orderID uuid.UUID) ([]*Entry, error)

	// ReversalExists reports whether reversal entries were already posted
	// for the given refund.
	ReversalExists(ctx context.Context, refundID uuid.UUID) (bool, error)

	// AppendEntries persists new ledger entries in one transaction.
	AppendEntries(ctx context.Context, entries []*Entry) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new ledger repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListSplitEntries(ctx context.Context, storeID, orderID uuid.UUID) ([]*Entry, error) {
	var entries []*Entry
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND order_id = ? AND refund_id IS NULL", storeID, orderID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list split entries: %w", err)
	}
	return entries, nil
}

func (r *repository) ReversalExists(ctx context.Context, refundID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Entry{}).
		Where("refund_id = ?", refundID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check reversal exists: %w", err)
	}
	return count > 0, nil
}

func (r *repository) AppendEntries(ctx context.Context, entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("append ledger entries: %w", err)
	}
	return nil
}
