package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for inventory data access. WithTx
// yields a Repository bound to a transaction so a restoration's whole
// write set commits or rolls back together.
type Repository interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	// GetConsumedReservation finds the consumed reservation for an order
	// line, locked for update.
	GetConsumedReservation(ctx context.Context, storeID, orderID, productID uuid.UUID, variantID *uuid.UUID) (*Reservation, error)

	// IncrementStock credits the supplier stock pool: both availableStock
	// and totalStock grow by qty.
	IncrementStock(ctx context.Context, storeID, supplierID, variantID uuid.UUID, qty int) error

	// ClaimRefundRestored flips the refund's inventoryRestored flag
	// false→true. Returns false when the flag was already set, which is
	// the idempotency guard against double-crediting stock.
	ClaimRefundRestored(ctx context.Context, refundID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new inventory repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) GetConsumedReservation(ctx context.Context, storeID, orderID, productID uuid.UUID, variantID *uuid.UUID) (*Reservation, error) {
	query := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND order_id = ? AND product_id = ? AND status = ?",
			storeID, orderID, productID, ReservationStatusConsumed)
	if variantID != nil {
		query = query.Where("variant_id = ?", *variantID)
	}

	// Limit 2 exposes ambiguity without loading every row.
	var reservations []Reservation
	if err := query.Limit(2).Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("get consumed reservation: %w", err)
	}
	switch len(reservations) {
	case 0:
		return nil, ErrReservationNotFound
	case 1:
		return &reservations[0], nil
	default:
		// More than one variant line matches; crediting an arbitrary one
		// would restock the wrong supplier pool.
		return nil, ErrAmbiguousReservation
	}
}

func (r *repository) IncrementStock(ctx context.Context, storeID, supplierID, variantID uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&SupplierVariantInventory{}).
		Where("store_id = ? AND supplier_id = ? AND variant_id = ?", storeID, supplierID, variantID).
		Updates(map[string]interface{}{
			"available_stock": gorm.Expr("available_stock + ?", qty),
			"total_stock":     gorm.Expr("total_stock + ?", qty),
			"updated_at":      gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return fmt.Errorf("increment stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInventoryNotFound
	}
	return nil
}

func (r *repository) ClaimRefundRestored(ctx context.Context, refundID uuid.UUID) (bool, error) {
	// Raw update on the refunds table: the flag claim is part of the
	// restoration write set and must ride the same transaction.
	result := r.db.WithContext(ctx).Exec(
		"UPDATE refunds SET inventory_restored = TRUE, updated_at = NOW() WHERE id = ? AND inventory_restored = FALSE",
		refundID,
	)
	if result.Error != nil {
		return false, fmt.Errorf("claim refund restored: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
