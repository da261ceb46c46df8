package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// alertRetryIntervals spaces out redelivery of a failed alert.
var alertRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// SignatureHeader carries the HMAC of an outbound alert body.
const SignatureHeader = "X-Signature"

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// LogAlertNotifier writes alerts to the log.
type LogAlertNotifier struct {
	log zerolog.Logger
}

// NewLogAlertNotifier creates a LogAlertNotifier.
func NewLogAlertNotifier(log zerolog.Logger) *LogAlertNotifier {
	return &LogAlertNotifier{log: log}
}

func (n *LogAlertNotifier) Raise(_ context.Context, alert domain.Alert) error {
	n.log.Warn().
		Str("event_type", alert.EventType).
		Str("log_id", alert.LogID).
		Int64("entry_id", alert.EntryID).
		Msg("audit alert raised")
	return nil
}

// HTTPAlertNotifier POSTs signed alerts to the notification collaborator, retrying in the background.
type HTTPAlertNotifier struct {
	url       string
	secret    string
	sigSvc    ports.SignatureService
	client    HTTPClient
	intervals []time.Duration
	sleep     func(time.Duration)
	log       zerolog.Logger
}

// NewHTTPAlertNotifier creates an HTTPAlertNotifier.
func NewHTTPAlertNotifier(url, secret string, sigSvc ports.SignatureService, client HTTPClient, log zerolog.Logger) *HTTPAlertNotifier {
	return &HTTPAlertNotifier{
		url:       url,
		secret:    secret,
		sigSvc:    sigSvc,
		client:    client,
		intervals: alertRetryIntervals,
		sleep:     time.Sleep,
		log:       log,
	}
}

// Raise enqueues delivery and returns once the payload is built.
func (n *HTTPAlertNotifier) Raise(_ context.Context, alert domain.Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	signature := n.sigSvc.Sign(n.secret, string(body))

	go n.deliverWithRetries(body, signature, alert.LogID)
	return nil
}

// deliverWithRetries attempts delivery once plus one retry per interval.
func (n *HTTPAlertNotifier) deliverWithRetries(body []byte, signature, logID string) {
	for attempt := 0; attempt <= len(n.intervals); attempt++ {
		if attempt > 0 {
			n.sleep(n.intervals[attempt-1])
		}

		req, err := http.NewRequest(http.MethodPost, n.url, bytes.NewReader(body))
		if err != nil {
			n.log.Error().Err(err).Str("log_id", logID).Msg("alert: failed to create request")
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SignatureHeader, signature)

		resp, err := n.client.Do(req)
		if err != nil {
			n.log.Warn().Err(err).Str("log_id", logID).Int("attempt", attempt+1).Msg("alert: delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			n.log.Info().Str("log_id", logID).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("alert: delivered")
			return
		}

		n.log.Warn().Str("log_id", logID).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("alert: non-2xx response, retrying")
	}

	n.log.Error().Str("log_id", logID).Msg("alert: all retry attempts exhausted")
}

// MultiNotifier fans an alert out to every notifier and joins their errors.
type MultiNotifier []ports.AlertNotifier

func (m MultiNotifier) Raise(ctx context.Context, alert domain.Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Raise(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
