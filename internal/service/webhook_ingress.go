package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	webhookNonceNamespace = "webhook"
	defaultReplayTTL      = 24 * time.Hour
)

// WebhookIngressConfig configures inbound audit events.
type WebhookIngressConfig struct {
	Secret      string
	AlertEvents []string
	ReplayTTL   time.Duration
}

// WebhookIngressImpl implements ports.WebhookIngress.
type WebhookIngressImpl struct {
	sigSvc   ports.SignatureService
	nonces   ports.NonceStore // optional
	repo     ports.LedgerRepository
	appender ports.AuditAppender
	notifier ports.AlertNotifier // optional
	secret   string
	alerts   map[string]struct{}
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewWebhookIngress creates a new WebhookIngressImpl. nonces and notifier may be nil.
func NewWebhookIngress(
	sigSvc ports.SignatureService,
	nonces ports.NonceStore,
	repo ports.LedgerRepository,
	appender ports.AuditAppender,
	notifier ports.AlertNotifier,
	cfg WebhookIngressConfig,
	log zerolog.Logger,
) *WebhookIngressImpl {
	alerts := make(map[string]struct{}, len(cfg.AlertEvents))
	for _, e := range cfg.AlertEvents {
		if e = normalizeEventType(e); e != "" {
			alerts[e] = struct{}{}
		}
	}
	ttl := cfg.ReplayTTL
	if ttl <= 0 {
		ttl = defaultReplayTTL
	}
	return &WebhookIngressImpl{
		sigSvc:   sigSvc,
		nonces:   nonces,
		repo:     repo,
		appender: appender,
		notifier: notifier,
		secret:   cfg.Secret,
		alerts:   alerts,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Receive verifies, de-duplicates and appends an external event. Nothing is appended
// unless the signature checks out.
func (w *WebhookIngressImpl) Receive(ctx context.Context, ev domain.WebhookEvent) (*domain.LedgerEntry, error) {
	eventType := normalizeEventType(ev.EventType)
	logID := strings.TrimSpace(ev.LogID)
	if eventType == "" || logID == "" {
		return nil, apperror.Validation("event_type and log_id are required")
	}
	if ev.Timestamp.IsZero() {
		return nil, apperror.Validation("timestamp is required")
	}

	if err := w.verifySignature(ev); err != nil {
		w.log.Warn().
			Str("event_type", eventType).
			Str("log_id", logID).
			Msg("webhook signature rejected")
		return nil, err
	}

	claimed, err := w.guardReplay(ctx, logID)
	if err != nil {
		return nil, err
	}

	metadata := domain.Fields{
		"event_type":      ev.EventType,
		"event_timestamp": ev.Timestamp,
		"source":          "webhook",
	}
	rec := ports.RawRecord{
		EntityType: domain.EntityWebhook,
		EntityID:   logID,
		Action:     domain.WebhookAction(eventType),
		After:      ev.Data,
		Metadata:   metadata,
	}
	if meta, ok := domain.RequestMetaFrom(ctx); ok {
		rec.IPAddress = meta.IPAddress
		rec.DeviceID = meta.DeviceID
	}

	entry, err := w.appender.RecordRaw(ctx, rec)
	if err != nil {
		if claimed {
			w.releaseClaim(ctx, logID)
		}
		return nil, err
	}

	w.log.Info().
		Str("event_type", eventType).
		Str("log_id", logID).
		Int64("entry_id", entry.ID).
		Msg("webhook event recorded")

	if _, alert := w.alerts[eventType]; alert && w.notifier != nil {
		// The entry is committed; a notifier failure must not turn the receipt into an error.
		if err := w.notifier.Raise(ctx, domain.Alert{
			EventType: eventType,
			LogID:     logID,
			EntryID:   entry.ID,
			Data:      ev.Data,
			RaisedAt:  w.now().UTC(),
		}); err != nil {
			w.log.Error().Err(err).Str("log_id", logID).Msg("failed to raise webhook alert")
		}
	}

	return entry, nil
}

func (w *WebhookIngressImpl) verifySignature(ev domain.WebhookEvent) error {
	if w.secret == "" || ev.Signature == "" {
		return apperror.ErrInvalidSignature()
	}
	data, err := domain.Canonicalize(ev.Data)
	if err != nil {
		return apperror.Validation(fmt.Sprintf("unsupported event data: %v", err))
	}
	payload := w.sigSvc.BuildEventCanonical(ev.EventType, ev.LogID, ev.Timestamp.Unix(), data)
	if !w.sigSvc.Verify(w.secret, payload, ev.Signature) {
		return apperror.ErrInvalidSignature()
	}
	return nil
}

// guardReplay checks the redis nonce first, then the ledger itself as a backstop.
func (w *WebhookIngressImpl) guardReplay(ctx context.Context, logID string) (bool, error) {
	claimed := false
	if w.nonces != nil {
		fresh, err := w.nonces.CheckAndSet(ctx, webhookNonceNamespace, logID, w.ttl)
		switch {
		case err != nil:
			w.log.Warn().Err(err).Str("log_id", logID).Msg("replay guard unavailable, falling through to ledger check")
		case !fresh:
			return false, apperror.ErrReplayedEvent()
		default:
			claimed = true
		}
	}

	exists, err := w.repo.ExistsForEntity(ctx, domain.EntityWebhook, logID)
	if err != nil {
		if claimed {
			w.releaseClaim(ctx, logID)
		}
		return false, apperror.ErrDatabaseError(fmt.Errorf("check webhook replay: %w", err))
	}
	if exists {
		return false, apperror.ErrReplayedEvent()
	}
	return claimed, nil
}

// releaseClaim lets the sender retry an event whose receipt failed after the claim.
func (w *WebhookIngressImpl) releaseClaim(ctx context.Context, logID string) {
	if err := w.nonces.Release(context.WithoutCancel(ctx), webhookNonceNamespace, logID); err != nil {
		w.log.Warn().Err(err).Str("log_id", logID).Msg("failed to release replay claim")
	}
}

func normalizeEventType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
