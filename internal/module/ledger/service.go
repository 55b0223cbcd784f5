package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefleet/server/internal/utils/requestctx"
)

// Service posts split reversals to the ledger.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new ledger service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ReverseSplit posts the additive inverse of every split entry created
// for the order at payment time, tagged with the refund so the reversal
// can be traced back to it. Re-running for the same refund is a no-op.
func (s *Service) ReverseSplit(ctx context.Context, storeID, orderID, refundID uuid.UUID, reason string, actor requestctx.Actor) error {
	exists, err := s.repo.ReversalExists(ctx, refundID)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("split already reversed for refund",
			zap.String("refund_id", refundID.String()),
		)
		return nil
	}

	originals, err := s.repo.ListSplitEntries(ctx, storeID, orderID)
	if err != nil {
		return err
	}
	if len(originals) == 0 {
		return ErrNoSplitEntries
	}

	reversalReason := fmt.Sprintf("refund %s by %s %s: %s", refundID, actor.Role, actor.ID, reason)
	now := time.Now()

	reversals := make([]*Entry, 0, len(originals))
	for _, orig := range originals {
		reversals = append(reversals, &Entry{
			ID:        uuid.New(),
			StoreID:   storeID,
			OrderID:   orderID,
			Party:     orig.Party,
			PartyID:   orig.PartyID,
			Amount:    -orig.Amount,
			Currency:  orig.Currency,
			RefundID:  &refundID,
			Reason:    reversalReason,
			Tags:      []string{"refund", "reversal"},
			CreatedAt: now,
		})
	}

	if err := s.repo.AppendEntries(ctx, reversals); err != nil {
		return err
	}

	s.logger.Info("split reversed",
		zap.String("order_id", orderID.String()),
		zap.String("refund_id", refundID.String()),
		zap.Int("entries", len(reversals)),
	)
	return nil
}
