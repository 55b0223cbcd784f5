package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RestoreLine is one refunded order line to credit back to supplier stock.
type RestoreLine struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

// Restorer credits supplier stock for refunded items. All increments for
// a refund plus the refund's inventoryRestored flag commit in a single
// transaction: either every line is restored and the flag is set, or
// nothing changes and the flag stays false for a later retry.
type Restorer struct {
	repo   Repository
	logger *zap.Logger
}

// NewRestorer creates a new inventory restorer.
func NewRestorer(repo Repository, logger *zap.Logger) *Restorer {
	return &Restorer{repo: repo, logger: logger}
}

// Restore credits stock for every refunded line. Re-running for a refund
// that was already restored is a no-op: the flag claim fails and no
// counter moves.
func (r *Restorer) Restore(ctx context.Context, storeID, orderID, refundID uuid.UUID, lines []RestoreLine) error {
	return r.repo.WithTx(ctx, func(tx Repository) error {
		claimed, err := tx.ClaimRefundRestored(ctx, refundID)
		if err != nil {
			return err
		}
		if !claimed {
			r.logger.Info("inventory already restored for refund",
				zap.String("refund_id", refundID.String()),
			)
			return nil
		}

		for _, line := range lines {
			res, err := tx.GetConsumedReservation(ctx, storeID, orderID, line.ProductID, line.VariantID)
			if err != nil {
				return fmt.Errorf("line %s: %w", line.ProductID, err)
			}
			if err := tx.IncrementStock(ctx, storeID, res.SupplierID, res.VariantID, line.Quantity); err != nil {
				return fmt.Errorf("line %s: %w", line.ProductID, err)
			}
		}
		return nil
	})
}
