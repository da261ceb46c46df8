package service

import (
	"context"
	"fmt"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Mutation describes one audited change. Before and After are entities known to the
// snapshot registry, domain.Fields, or nil.
type Mutation struct {
	EntityType string
	EntityID   string
	Action     domain.LedgerAction
	Before     any
	After      any
	Metadata   domain.Fields
}

// AuditRecorder turns business mutations into ledger entries.
type AuditRecorder struct {
	chain     *HashChain
	snapshots *SnapshotRegistry
	now       func() time.Time
	log       zerolog.Logger
}

// NewAuditRecorder creates an AuditRecorder.
func NewAuditRecorder(chain *HashChain, snapshots *SnapshotRegistry, log zerolog.Logger) *AuditRecorder {
	return &AuditRecorder{
		chain:     chain,
		snapshots: snapshots,
		now:       time.Now,
		log:       log,
	}
}

// ResolveContext returns the request provenance carried by ctx. Missing metadata is
// left empty, never an error.
func (r *AuditRecorder) ResolveContext(ctx context.Context) domain.RequestMeta {
	meta, ok := domain.RequestMetaFrom(ctx)
	if !ok {
		r.log.Debug().Msg("no request metadata in context, recording as system action")
	}
	return meta
}

// RecordMutation snapshots, resolves context and appends inside tx.
func (r *AuditRecorder) RecordMutation(ctx context.Context, tx pgx.Tx, m Mutation) (*domain.LedgerEntry, error) {
	before, err := r.snapshots.Snapshot(m.EntityType, m.Before)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("snapshot before: %w", err))
	}
	after, err := r.snapshots.Snapshot(m.EntityType, m.After)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("snapshot after: %w", err))
	}

	meta := r.ResolveContext(ctx)
	return r.chain.Append(ctx, tx, AppendRequest{
		ActorID:    meta.ActorID,
		BranchID:   meta.BranchID,
		DeviceID:   meta.DeviceID,
		IPAddress:  meta.IPAddress,
		Action:     m.Action,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Before:     before,
		After:      after,
		Metadata:   m.Metadata,
		DurationMS: r.elapsed(meta),
	})
}

func (r *AuditRecorder) RecordCreate(ctx context.Context, tx pgx.Tx, entityType, entityID string, after any) (*domain.LedgerEntry, error) {
	return r.RecordMutation(ctx, tx, Mutation{EntityType: entityType, EntityID: entityID, Action: domain.ActionCreate, After: after})
}

func (r *AuditRecorder) RecordUpdate(ctx context.Context, tx pgx.Tx, entityType, entityID string, before, after any) (*domain.LedgerEntry, error) {
	return r.RecordMutation(ctx, tx, Mutation{EntityType: entityType, EntityID: entityID, Action: domain.ActionUpdate, Before: before, After: after})
}

func (r *AuditRecorder) RecordDelete(ctx context.Context, tx pgx.Tx, entityType, entityID string, before any) (*domain.LedgerEntry, error) {
	return r.RecordMutation(ctx, tx, Mutation{EntityType: entityType, EntityID: entityID, Action: domain.ActionDelete, Before: before})
}

func (r *AuditRecorder) RecordApprove(ctx context.Context, tx pgx.Tx, entityType, entityID string, before, after any) (*domain.LedgerEntry, error) {
	return r.RecordMutation(ctx, tx, Mutation{EntityType: entityType, EntityID: entityID, Action: domain.ActionApprove, Before: before, After: after})
}

// RecordView logs a read in a transaction of its own.
func (r *AuditRecorder) RecordView(ctx context.Context, entityType, entityID string, metadata domain.Fields) (*domain.LedgerEntry, error) {
	return r.recordStandalone(ctx, domain.ActionView, entityType, entityID, metadata)
}

// RecordExport logs an export in a transaction of its own.
func (r *AuditRecorder) RecordExport(ctx context.Context, metadata domain.Fields) (*domain.LedgerEntry, error) {
	return r.recordStandalone(ctx, domain.ActionExport, "AuditLog", domain.EntityIDNew, metadata)
}

func (r *AuditRecorder) recordStandalone(ctx context.Context, action domain.LedgerAction, entityType, entityID string, metadata domain.Fields) (*domain.LedgerEntry, error) {
	meta := r.ResolveContext(ctx)
	return r.chain.AppendStandalone(ctx, AppendRequest{
		ActorID:    meta.ActorID,
		BranchID:   meta.BranchID,
		DeviceID:   meta.DeviceID,
		IPAddress:  meta.IPAddress,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		DurationMS: r.elapsed(meta),
	})
}

// RecordRaw implements ports.AuditAppender: provenance comes from the caller, not the context.
func (r *AuditRecorder) RecordRaw(ctx context.Context, rec ports.RawRecord) (*domain.LedgerEntry, error) {
	var duration *int64
	if rec.Duration != nil {
		ms := rec.Duration.Milliseconds()
		duration = &ms
	}
	return r.chain.AppendStandalone(ctx, AppendRequest{
		ActorID:    rec.ActorID,
		BranchID:   rec.BranchID,
		DeviceID:   rec.DeviceID,
		IPAddress:  rec.IPAddress,
		Action:     rec.Action,
		EntityType: rec.EntityType,
		EntityID:   rec.EntityID,
		Before:     rec.Before,
		After:      rec.After,
		Metadata:   rec.Metadata,
		DurationMS: duration,
	})
}

func (r *AuditRecorder) elapsed(meta domain.RequestMeta) *int64 {
	if meta.StartTime.IsZero() {
		return nil
	}
	ms := r.now().Sub(meta.StartTime).Milliseconds()
	return &ms
}
