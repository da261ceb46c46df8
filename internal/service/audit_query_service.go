package service

import (
	"context"
	"fmt"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize    = 50
	maxPageSize        = 200
	defaultStatsWindow = 30
	maxStatsWindow     = 365
	exportBatchSize    = 500
)

// AuditQueryServiceImpl implements ports.AuditQueryService.
type AuditQueryServiceImpl struct {
	repo          ports.LedgerRepository
	chain         *HashChain
	recorder      *AuditRecorder
	redactor      *Redactor
	exportMaxRows int
	now           func() time.Time
	log           zerolog.Logger
}

// NewAuditQueryService creates a new AuditQueryServiceImpl.
func NewAuditQueryService(
	repo ports.LedgerRepository,
	chain *HashChain,
	recorder *AuditRecorder,
	redactor *Redactor,
	exportMaxRows int,
	log zerolog.Logger,
) *AuditQueryServiceImpl {
	return &AuditQueryServiceImpl{
		repo:          repo,
		chain:         chain,
		recorder:      recorder,
		redactor:      redactor,
		exportMaxRows: exportMaxRows,
		now:           time.Now,
		log:           log,
	}
}

// Search returns one page of entries matching the filter, newest first.
func (s *AuditQueryServiceImpl) Search(ctx context.Context, req ports.SearchRequest) (*ports.SearchResult, error) {
	from, to, err := dateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}
	page, pageSize := normalizePage(req.Page, req.PageSize)

	filter := ports.LedgerFilter{
		ActorID:    req.ActorID,
		BranchID:   req.BranchID,
		Action:     req.Action,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		From:       from,
		To:         to,
		Query:      req.Query,
		Scope:      req.Scope,
	}
	entries, total, err := s.repo.Search(ctx, filter, page, pageSize)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("search ledger: %w", err))
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}

	return &ports.SearchResult{
		Entries:  entries,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Trail returns the full history of one entity and records the read.
func (s *AuditQueryServiceImpl) Trail(ctx context.Context, entityType, entityID string, scope ports.Scope) (*ports.AuditTrail, error) {
	if entityType == "" || entityID == "" {
		return nil, apperror.Validation("entity type and entity id are required")
	}

	entries, err := s.repo.Trail(ctx, entityType, entityID, scope)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load trail: %w", err))
	}
	if len(entries) == 0 {
		return nil, apperror.ErrNotFound("Audit trail")
	}

	trail := &ports.AuditTrail{
		EntityType: entityType,
		EntityID:   entityID,
		TotalLogs:  len(entries),
		FirstLog:   &entries[0],
		LastLog:    &entries[len(entries)-1],
		Entries:    entries,
	}

	if _, err := s.recorder.RecordView(ctx, entityType, entityID, domain.Fields{"view": "audit_trail"}); err != nil {
		return nil, err
	}
	return trail, nil
}

// Stats aggregates activity over the last windowDays plus chain health.
func (s *AuditQueryServiceImpl) Stats(ctx context.Context, windowDays int, scope ports.Scope) (*ports.AuditStats, error) {
	if windowDays == 0 {
		windowDays = defaultStatsWindow
	}
	if windowDays < 1 || windowDays > maxStatsWindow {
		return nil, apperror.Validation(fmt.Sprintf("window must be between 1 and %d days", maxStatsWindow))
	}

	since := s.now().UTC().AddDate(0, 0, -windowDays)
	activity, err := s.repo.Stats(ctx, since, scope)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("ledger stats: %w", err))
	}

	health, err := s.chain.Health(ctx)
	if err != nil {
		return nil, err
	}

	return &ports.AuditStats{
		WindowDays:  windowDays,
		Since:       since,
		Activity:    *activity,
		ChainHealth: health,
	}, nil
}

// Export renders the selected range. Sensitive snapshot fields are masked unless requested.
func (s *AuditQueryServiceImpl) Export(ctx context.Context, req ports.ExportRequest) (*ports.ExportFile, error) {
	switch req.Format {
	case ports.ExportJSON, ports.ExportCSV, ports.ExportXLSX:
	default:
		return nil, apperror.Validation(fmt.Sprintf("unsupported export format %q", req.Format))
	}
	from, to, err := dateRange(req.From, req.To)
	if err != nil {
		return nil, err
	}

	filter := ports.LedgerFilter{From: from, To: to, Scope: req.Scope}
	entries := make([]domain.LedgerEntry, 0, exportBatchSize)
	truncated := false
	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("export cancelled: %w", err))
		}
		batch, err := s.repo.ScanFiltered(ctx, filter, afterID, exportBatchSize)
		if err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("scan ledger for export: %w", err))
		}
		for i := range batch {
			if s.exportMaxRows > 0 && len(entries) >= s.exportMaxRows {
				truncated = true
				break
			}
			e := batch[i]
			if !req.IncludeSensitive {
				e = s.redactor.RedactEntry(e)
			}
			entries = append(entries, e)
		}
		if truncated || len(batch) < exportBatchSize {
			break
		}
		afterID = batch[len(batch)-1].ID
	}

	data, contentType, err := renderExport(req.Format, entries)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("render %s export: %w", req.Format, err))
	}

	metadata := domain.Fields{
		"format":            string(req.Format),
		"from":              dateOrNil(req.From),
		"to":                dateOrNil(req.To),
		"include_sensitive": req.IncludeSensitive,
		"rows":              len(entries),
		"truncated":         truncated,
		"scope":             string(req.Scope.Kind),
	}
	if _, err := s.recorder.RecordExport(ctx, metadata); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("format", string(req.Format)).
		Int("rows", len(entries)).
		Bool("include_sensitive", req.IncludeSensitive).
		Msg("audit log exported")

	return &ports.ExportFile{
		Filename:    fmt.Sprintf("audit_log_%s.%s", s.now().UTC().Format("20060102_150405"), req.Format),
		ContentType: contentType,
		Data:        data,
		Rows:        len(entries),
	}, nil
}

// dateRange converts an inclusive calendar range to [from, to) instants.
func dateRange(from, to *time.Time) (*time.Time, *time.Time, error) {
	if from != nil && to != nil && domain.CalendarDate(*from).After(domain.CalendarDate(*to)) {
		return nil, nil, apperror.Validation("date_from must not be after date_to")
	}
	var start, end *time.Time
	if from != nil {
		d := domain.CalendarDate(*from)
		start = &d
	}
	if to != nil {
		d := domain.CalendarDate(*to).AddDate(0, 0, 1)
		end = &d
	}
	return start, end, nil
}

func dateOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return domain.FormatDate(*t)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
