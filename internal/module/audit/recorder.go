package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storefleet/server/internal/utils/requestctx"
)

// Recorder appends entries to the audit trail.
type Recorder interface {
	// Record appends an audit entry. Append-only; callers treat it as
	// fire-and-forget.
	Record(ctx context.Context, storeID uuid.UUID, actor requestctx.Actor, action Action, orderID uuid.UUID, metadata map[string]any) error

	// GetLogs retrieves audit entries for an order, newest first.
	GetLogs(ctx context.Context, storeID, orderID uuid.UUID, limit, offset int) ([]*Log, int64, error)
}

type recorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRecorder creates a new audit recorder.
func NewRecorder(db *gorm.DB, logger *zap.Logger) Recorder {
	return &recorder{db: db, logger: logger}
}

func (r *recorder) Record(ctx context.Context, storeID uuid.UUID, actor requestctx.Actor, action Action, orderID uuid.UUID, metadata map[string]any) error {
	entry := &Log{
		StoreID:   storeID,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Action:    action,
		OrderID:   orderID,
		Metadata:  metadata,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		r.logger.Error("failed to append audit log",
			zap.String("action", string(action)),
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *recorder) GetLogs(ctx context.Context, storeID, orderID uuid.UUID, limit, offset int) ([]*Log, int64, error) {
	var logs []*Log
	var total int64

	if err := r.db.WithContext(ctx).Model(&Log{}).
		Where("store_id = ? AND order_id = ?", storeID, orderID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND order_id = ?", storeID, orderID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
