package requestctx

import (
	"context"

	"github.com/google/uuid"
)

// Role is the closed set of actor kinds known to the platform.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSupplier Role = "supplier"
	RoleReseller Role = "reseller"
	RoleSystem   Role = "system"
)

// Valid reports whether the role is one of the known actor kinds.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupplier, RoleReseller, RoleSystem:
		return true
	}
	return false
}

// Actor identifies who is performing the request and on which store.
type Actor struct {
	ID      uuid.UUID
	StoreID uuid.UUID
	Role    Role
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	actorKey
)

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID from context, or "".
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the actor from context. ok is false when the request
// carries no authenticated actor.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}
