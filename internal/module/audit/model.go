package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefleet/server/internal/utils/requestctx"
)

// Action identifies what an audit entry records.
type Action string

const (
	ActionRefundCreated Action = "refund.created"
)

// Log is one append-only audit trail entry.
type Log struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   uuid.UUID       `json:"store_id" gorm:"type:uuid;not null;index"`
	ActorID   uuid.UUID       `json:"actor_id" gorm:"type:uuid;not null;index"`
	ActorRole requestctx.Role `json:"actor_role" gorm:"not null"`
	Action    Action          `json:"action" gorm:"not null;index"`
	OrderID   uuid.UUID       `json:"order_id" gorm:"type:uuid;index"`
	Metadata  map[string]any  `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName returns the database table name.
func (Log) TableName() string {
	return "audit_logs"
}
