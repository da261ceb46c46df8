package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role names understood by the visibility and privilege checks.
const (
	RoleAdmin   = "admin"
	RoleOwner   = "owner"
	RoleAuditor = "auditor"
	RoleManager = "manager"
)

// RequestMeta is the provenance attached to ledger entries. Every field is optional.
type RequestMeta struct {
	ActorID   *uuid.UUID
	BranchID  *uuid.UUID
	Role      string
	DeviceID  string
	IPAddress string
	RequestID string
	StartTime time.Time
}

type requestMetaKey struct{}

// WithRequestMeta stores request provenance in ctx.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom returns the provenance stored in ctx, if any.
func RequestMetaFrom(ctx context.Context) (RequestMeta, bool) {
	if ctx == nil {
		return RequestMeta{}, false
	}
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}
