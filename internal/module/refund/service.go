package refund

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefleet/server/internal/module/audit"
	"github.com/storefleet/server/internal/module/inventory"
	"github.com/storefleet/server/internal/module/order"
	"github.com/storefleet/server/internal/module/payment"
	"github.com/storefleet/server/internal/module/payment/provider"
	apperrors "github.com/storefleet/server/internal/shared/errors"
	"github.com/storefleet/server/internal/shared/events"
	"github.com/storefleet/server/internal/utils/metrics"
	"github.com/storefleet/server/internal/utils/random"
	"github.com/storefleet/server/internal/utils/requestctx"
)

// ProviderResolver resolves a payment provider by name.
type ProviderResolver interface {
	Get(name string) (provider.Provider, error)
}

// InventoryRestorer credits supplier stock for refunded lines.
type InventoryRestorer interface {
	Restore(ctx context.Context, storeID, orderID, refundID uuid.UUID, lines []inventory.RestoreLine) error
}

// SplitReverser posts compensating ledger entries for a refund.
type SplitReverser interface {
	ReverseSplit(ctx context.Context, storeID, orderID, refundID uuid.UUID, reason string, actor requestctx.Actor) error
}

// Locker serializes refund creation per order.
type Locker interface {
	Acquire(ctx context.Context, orderID uuid.UUID) (bool, error)
	Release(ctx context.Context, orderID uuid.UUID) error
}

// RefundCreatedEvent is published after a refund is recorded.
type RefundCreatedEvent struct {
	RefundID         uuid.UUID             `json:"refund_id"`
	OrderID          uuid.UUID             `json:"order_id"`
	StoreID          uuid.UUID             `json:"store_id"`
	Type             Type                  `json:"type"`
	Amount           int64                 `json:"amount"`
	Currency         string                `json:"currency"`
	Provider         string                `json:"provider"`
	ProviderRefundID string                `json:"provider_refund_id"`
	Status           provider.RefundStatus `json:"status"`
}

// Service orchestrates refund creation: validation, provider call,
// recording, and the post-refund compensations.
type Service struct {
	orders    order.Repository
	payments  payment.Repository
	providers ProviderResolver
	repo      Repository
	lock      Locker
	validator *Validator
	calc      *Calculator
	restorer  InventoryRestorer
	ledger    SplitReverser
	audit     audit.Recorder
	producer  *events.Producer
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewService creates a new refund service.
func NewService(
	orders order.Repository,
	payments payment.Repository,
	providers ProviderResolver,
	repo Repository,
	lock Locker,
	restorer InventoryRestorer,
	ledger SplitReverser,
	auditRec audit.Recorder,
	producer *events.Producer,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		orders:    orders,
		payments:  payments,
		providers: providers,
		repo:      repo,
		lock:      lock,
		validator: NewValidator(),
		calc:      NewCalculator(),
		restorer:  restorer,
		ledger:    ledger,
		audit:     auditRec,
		producer:  producer,
		metrics:   m,
		logger:    logger,
	}
}

// CreateRefund executes the whole refund flow for an order. The provider
// call happens at most once per request: the per-order lock rejects
// concurrent attempts, and nothing is persisted when the provider call
// fails, so a retry is safe.
func (s *Service) CreateRefund(ctx context.Context, orderID uuid.UUID, req *CreateRefundRequest) (*RefundResponse, error) {
	actor, ok := requestctx.ActorFrom(ctx)
	if !ok {
		return nil, apperrors.Unauthorized("")
	}
	storeID := actor.StoreID

	acquired, err := s.lock.Acquire(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal("failed to acquire refund lock", err)
	}
	if !acquired {
		return nil, apperrors.Conflict("a refund for this order is already in progress")
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), orderID); err != nil {
			s.logger.Warn("failed to release refund lock",
				zap.String("order_id", orderID.String()),
				zap.Error(err),
			)
		}
	}()

	o, err := s.orders.GetOrderWithItems(ctx, storeID, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, apperrors.NotFound("order")
		}
		return nil, apperrors.Internal("failed to load order", err)
	}

	p, err := s.payments.GetSucceededByOrder(ctx, storeID, orderID)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			return nil, apperrors.NotFound("payment")
		}
		return nil, apperrors.Internal("failed to load payment", err)
	}

	alreadyRefunded, err := s.repo.SumRefunded(ctx, p.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to sum prior refunds", err)
	}

	if err := s.validator.Validate(req, o, p, alreadyRefunded); err != nil {
		return nil, err
	}
	breakdown := s.calc.Build(req, o, p)

	prov, err := s.providers.Get(p.Provider)
	if err != nil {
		return nil, apperrors.Internal("no provider registered for payment", err)
	}

	refundID := uuid.New()
	input := &provider.RefundInput{
		ChargeID:    p.ProviderChargeID,
		RefundID:    refundID.String(),
		Amount:      breakdown.Amount,
		TotalAmount: p.Amount,
		Reason:      req.Reason,
		Metadata: map[string]string{
			"order_id": orderID.String(),
			"store_id": storeID.String(),
		},
	}
	if req.Type == TypeFull {
		// Full captured amount, let the provider derive it from the charge.
		input.Amount = 0
	}

	start := time.Now()
	result, err := prov.CreateRefund(ctx, input)
	if s.metrics != nil {
		s.metrics.ProviderCallDuration.WithLabelValues(p.Provider).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RefundsTotal.WithLabelValues(string(req.Type), p.Provider, "provider_error").Inc()
		}
		s.logger.Error("provider refund call failed",
			zap.String("order_id", orderID.String()),
			zap.String("provider", p.Provider),
			zap.Error(err),
		)
		return nil, apperrors.Provider("", err)
	}

	amount := breakdown.Amount
	if result.Amount > 0 {
		amount = result.Amount
	}
	refund := &Refund{
		ID:               refundID,
		RefundNo:         "RF-" + random.UpperAlphaNum(10),
		StoreID:          storeID,
		OrderID:          orderID,
		PaymentID:        p.ID,
		Provider:         p.Provider,
		Type:             req.Type,
		Reason:           req.Reason,
		Amount:           amount,
		Currency:         p.Currency,
		ProviderRefundID: result.ProviderRefundID,
		ProviderStatus:   result.Status,
		RequestedBy:      actor.ID,
		RequestedByRole:  actor.Role,
	}
	for _, item := range breakdown.Items {
		refund.Items = append(refund.Items, Item{
			RefundID:  refundID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Amount:    item.Amount,
		})
	}

	// Only a succeeded provider outcome triggers compensations; pending
	// and failed results are still recorded for audit.
	var tasks []*CompensationTask
	if result.Status == provider.RefundStatusSucceeded {
		now := time.Now()
		tasks = []*CompensationTask{
			{StoreID: storeID, RefundID: refundID, OrderID: orderID, Kind: CompensationInventoryRestore, Status: TaskStatusPending, NextRunAt: now},
			{StoreID: storeID, RefundID: refundID, OrderID: orderID, Kind: CompensationSplitReversal, Status: TaskStatusPending, NextRunAt: now},
		}
	}

	if err := s.repo.CreateWithTasks(ctx, refund, tasks); err != nil {
		// The provider refund went through but we could not record it.
		// Surface the failure loudly; reconciliation against the provider
		// dashboard is the recovery path.
		s.logger.Error("refund executed by provider but not recorded",
			zap.String("order_id", orderID.String()),
			zap.String("provider_refund_id", result.ProviderRefundID),
			zap.Error(err),
		)
		return nil, apperrors.Internal("failed to record refund", err)
	}

	if result.Status == provider.RefundStatusSucceeded {
		s.runCompensations(ctx, refund, tasks)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, storeID, actor, audit.ActionRefundCreated, orderID, map[string]any{
			"refund_id":          refundID.String(),
			"provider_refund_id": result.ProviderRefundID,
			"type":               string(req.Type),
			"amount":             amount,
			"currency":           p.Currency,
			"status":             string(result.Status),
		})
	}

	if s.metrics != nil {
		s.metrics.RefundsTotal.WithLabelValues(string(req.Type), p.Provider, string(result.Status)).Inc()
		if result.Status == provider.RefundStatusSucceeded {
			s.metrics.RefundAmountCents.WithLabelValues(p.Currency).Add(float64(amount))
		}
	}

	s.producer.Publish("refund.created", orderID.String(), RefundCreatedEvent{
		RefundID:         refundID,
		OrderID:          orderID,
		StoreID:          storeID,
		Type:             req.Type,
		Amount:           amount,
		Currency:         p.Currency,
		Provider:         p.Provider,
		ProviderRefundID: result.ProviderRefundID,
		Status:           result.Status,
	})

	s.logger.Info("refund created",
		zap.String("refund_id", refundID.String()),
		zap.String("order_id", orderID.String()),
		zap.String("type", string(req.Type)),
		zap.Int64("amount", amount),
		zap.String("provider_status", string(result.Status)),
	)

	return refund.ToResponse(), nil
}

// runCompensations executes the refund's compensation tasks inline,
// best-effort. A failure here never fails the refund response: the money
// has already left the provider, so the task stays pending for the
// background worker to retry.
func (s *Service) runCompensations(ctx context.Context, r *Refund, tasks []*CompensationTask) {
	actor := requestctx.Actor{ID: r.RequestedBy, StoreID: r.StoreID, Role: r.RequestedByRole}
	for _, task := range tasks {
		var err error
		switch task.Kind {
		case CompensationInventoryRestore:
			err = s.restorer.Restore(ctx, r.StoreID, r.OrderID, r.ID, restoreLines(r))
		case CompensationSplitReversal:
			err = s.ledger.ReverseSplit(ctx, r.StoreID, r.OrderID, r.ID, r.Reason, actor)
		}
		if err != nil {
			if s.metrics != nil {
				s.metrics.CompensationRunsTotal.WithLabelValues(string(task.Kind), "failed").Inc()
			}
			s.logger.Error("compensation failed, left for retry",
				zap.String("refund_id", r.ID.String()),
				zap.String("kind", string(task.Kind)),
				zap.Error(err),
			)
			continue
		}
		if task.Kind == CompensationInventoryRestore {
			r.InventoryRestored = true
		}
		if s.metrics != nil {
			s.metrics.CompensationRunsTotal.WithLabelValues(string(task.Kind), "succeeded").Inc()
		}
		if err := s.repo.MarkTaskSucceeded(ctx, task.ID); err != nil {
			s.logger.Warn("failed to mark compensation task succeeded",
				zap.String("task_id", task.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// ListRefunds returns the order's refunds, most recent first.
func (s *Service) ListRefunds(ctx context.Context, orderID uuid.UUID) ([]*RefundResponse, error) {
	actor, ok := requestctx.ActorFrom(ctx)
	if !ok {
		return nil, apperrors.Unauthorized("")
	}

	refunds, err := s.repo.ListByOrder(ctx, actor.StoreID, orderID)
	if err != nil {
		return nil, apperrors.Internal("failed to list refunds", err)
	}

	resp := make([]*RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		resp = append(resp, r.ToResponse())
	}
	return resp, nil
}

func restoreLines(r *Refund) []inventory.RestoreLine {
	lines := make([]inventory.RestoreLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, inventory.RestoreLine{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
