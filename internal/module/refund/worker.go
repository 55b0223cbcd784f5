package refund

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/storefleet/server/internal/utils/metrics"
	"github.com/storefleet/server/internal/utils/requestctx"
)

// Worker retries pending compensation tasks in the background. Tasks
// land here when an inline compensation failed or the process died
// between recording the refund and running them.
type Worker struct {
	repo        Repository
	restorer    InventoryRestorer
	ledger      SplitReverser
	metrics     *metrics.Metrics
	logger      *zap.Logger
	interval    time.Duration
	batchSize   int
	maxAttempts int
	done        chan struct{}
}

// NewWorker creates a new compensation worker.
func NewWorker(
	repo Repository,
	restorer InventoryRestorer,
	ledger SplitReverser,
	m *metrics.Metrics,
	logger *zap.Logger,
	interval time.Duration,
	batchSize, maxAttempts int,
) *Worker {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &Worker{
		repo:        repo,
		restorer:    restorer,
		ledger:      ledger,
		metrics:     m,
		logger:      logger,
		interval:    interval,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		done:        make(chan struct{}),
	}
}

// Start runs the retry loop until the context is canceled.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()
}

// WaitStopped blocks until the retry loop has exited.
func (w *Worker) WaitStopped() {
	<-w.done
}

func (w *Worker) runOnce(ctx context.Context) {
	tasks, err := w.repo.ClaimDueTasks(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("failed to claim compensation tasks", zap.Error(err))
		return
	}
	for _, task := range tasks {
		w.runTask(ctx, task)
	}

	if w.metrics != nil {
		if pending, err := w.repo.CountPendingTasks(ctx); err == nil {
			w.metrics.CompensationsPending.Set(float64(pending))
		}
	}
}

func (w *Worker) runTask(ctx context.Context, task *CompensationTask) {
	r, err := w.repo.GetByID(ctx, task.StoreID, task.RefundID)
	if err != nil {
		w.failTask(ctx, task, err)
		return
	}

	actor := requestctx.Actor{ID: r.RequestedBy, StoreID: r.StoreID, Role: r.RequestedByRole}
	switch task.Kind {
	case CompensationInventoryRestore:
		err = w.restorer.Restore(ctx, r.StoreID, r.OrderID, r.ID, restoreLines(r))
	case CompensationSplitReversal:
		err = w.ledger.ReverseSplit(ctx, r.StoreID, r.OrderID, r.ID, r.Reason, actor)
	}
	if err != nil {
		w.failTask(ctx, task, err)
		return
	}

	if w.metrics != nil {
		w.metrics.CompensationRunsTotal.WithLabelValues(string(task.Kind), "succeeded").Inc()
	}
	if err := w.repo.MarkTaskSucceeded(ctx, task.ID); err != nil {
		w.logger.Warn("failed to mark compensation task succeeded",
			zap.String("task_id", task.ID.String()),
			zap.Error(err),
		)
		return
	}
	w.logger.Info("compensation task completed",
		zap.String("refund_id", task.RefundID.String()),
		zap.String("kind", string(task.Kind)),
		zap.Int("attempts", task.Attempts),
	)
}

func (w *Worker) failTask(ctx context.Context, task *CompensationTask, cause error) {
	if w.metrics != nil {
		w.metrics.CompensationRunsTotal.WithLabelValues(string(task.Kind), "failed").Inc()
	}
	terminal := task.Attempts >= w.maxAttempts
	nextRun := time.Now().Add(backoff(w.interval, task.Attempts))
	if err := w.repo.MarkTaskRetry(ctx, task.ID, cause.Error(), nextRun, terminal); err != nil {
		w.logger.Error("failed to reschedule compensation task",
			zap.String("task_id", task.ID.String()),
			zap.Error(err),
		)
		return
	}
	if terminal {
		w.logger.Error("compensation task exhausted attempts",
			zap.String("refund_id", task.RefundID.String()),
			zap.String("kind", string(task.Kind)),
			zap.Int("attempts", task.Attempts),
			zap.Error(cause),
		)
		return
	}
	w.logger.Warn("compensation task failed, rescheduled",
		zap.String("refund_id", task.RefundID.String()),
		zap.String("kind", string(task.Kind)),
		zap.Int("attempts", task.Attempts),
		zap.Time("next_run_at", nextRun),
		zap.Error(cause),
	)
}

// backoff doubles the base interval per attempt, capped at one hour.
func backoff(base time.Duration, attempts int) time.Duration {
	d := base
	for i := 1; i < attempts && d < time.Hour; i++ {
		d *= 2
	}
	if d > time.Hour {
		d = time.Hour
	}
	return d
}
