package refund

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefleet/server/internal/module/payment/provider"
)

// Repository defines the interface for refund data access.
type Repository interface {
	// CreateWithTasks persists the refund, its items, and its compensation
	// tasks in a single transaction.
	CreateWithTasks(ctx context.Context, r *Refund, tasks []*CompensationTask) error

	// GetByID returns a refund with its items.
	GetByID(ctx context.Context, storeID, id uuid.UUID) (*Refund, error)

	// ListByOrder returns the order's refunds, most recent first.
	ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]*Refund, error)

	// SumRefunded returns the total non-failed refunded amount against a
	// payment, in minor units.
	SumRefunded(ctx context.Context, paymentID uuid.UUID) (int64, error)

	// ClaimDueTasks picks up to limit pending tasks that are due and bumps
	// their attempt counter. Claimed rows are skipped by concurrent workers.
	ClaimDueTasks(ctx context.Context, limit int) ([]*CompensationTask, error)

	// MarkTaskSucceeded finishes a task.
	MarkTaskSucceeded(ctx context.Context, id uuid.UUID) error

	// MarkTaskRetry records a failed run and schedules the next one, or
	// marks the task failed when terminal is true.
	MarkTaskRetry(ctx context.Context, id uuid.UUID, lastError string, nextRunAt time.Time, terminal bool) error

	// CountPendingTasks returns the number of pending compensation tasks.
	CountPendingTasks(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new refund repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWithTasks(ctx context.Context, refund *Refund, tasks []*CompensationTask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(refund).Error; err != nil {
			return fmt.Errorf("create refund: %w", err)
		}
		if len(tasks) > 0 {
			if err := tx.Create(&tasks).Error; err != nil {
				return fmt.Errorf("create compensation tasks: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, storeID, id uuid.UUID) (*Refund, error) {
	var refund Refund
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&refund, "id = ? AND store_id = ?", id, storeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, fmt.Errorf("get refund: %w", err)
	}
	return &refund, nil
}

func (r *repository) ListByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]*Refund, error) {
	var refunds []*Refund
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ? AND order_id = ?", storeID, orderID).
		Order("created_at DESC").
		Find(&refunds).Error
	if err != nil {
		return nil, fmt.Errorf("list refunds: %w", err)
	}
	return refunds, nil
}

func (r *repository) SumRefunded(ctx context.Context, paymentID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&Refund{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("payment_id = ? AND provider_status <> ?", paymentID, provider.RefundStatusFailed).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum refunded: %w", err)
	}
	return total, nil
}

func (r *repository) ClaimDueTasks(ctx context.Context, limit int) ([]*CompensationTask, error) {
	var tasks []*CompensationTask
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND next_run_at <= ?", TaskStatusPending, time.Now()).
			Order("next_run_at ASC").
			Limit(limit).
			Find(&tasks).Error; err != nil {
			return err
		}
		for _, task := range tasks {
			task.Attempts++
			if err := tx.Model(&CompensationTask{}).
				Where("id = ?", task.ID).
				Updates(map[string]interface{}{
					"attempts":   task.Attempts,
					"updated_at": time.Now(),
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim due tasks: %w", err)
	}
	return tasks, nil
}

func (r *repository) MarkTaskSucceeded(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&CompensationTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     TaskStatusSucceeded,
			"last_error": "",
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("mark task succeeded: %w", err)
	}
	return nil
}

func (r *repository) MarkTaskRetry(ctx context.Context, id uuid.UUID, lastError string, nextRunAt time.Time, terminal bool) error {
	status := TaskStatusPending
	if terminal {
		status = TaskStatusFailed
	}
	err := r.db.WithContext(ctx).
		Model(&CompensationTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"last_error":  lastError,
			"next_run_at": nextRunAt,
			"updated_at":  time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("mark task retry: %w", err)
	}
	return nil
}

func (r *repository) CountPendingTasks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&CompensationTask{}).
		Where("status = ?", TaskStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count pending tasks: %w", err)
	}
	return count, nil
}
