package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allScope = ports.Scope{Kind: ports.ScopeAll}

func TestAuditQuery_SearchPagesNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	branch := uuid.New()
	for i := 0; i < 5; i++ {
		env.post(t, branch, "2024-06-01", domain.KindInvoice, "", "10.00")
	}

	res, err := env.query.Search(ctx, ports.SearchRequest{Scope: allScope, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Total)
	assert.Equal(t, 2, res.Page)
	require.Len(t, res.Entries, 2)
	assert.Greater(t, res.Entries[0].ID, res.Entries[1].ID)

	res, err = env.query.Search(ctx, ports.SearchRequest{Scope: allScope, Page: 9})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.NotNil(t, res.Entries)
	assert.Equal(t, defaultPageSize, res.PageSize)
}

func TestAuditQuery_SearchClampsPageSize(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.query.Search(context.Background(), ports.SearchRequest{Scope: allScope, PageSize: 10_000})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, res.PageSize)
	assert.Equal(t, 1, res.Page)
}

func TestAuditQuery_SearchRejectsInvertedRange(t *testing.T) {
	env := newTestEnv(t)
	from, to := day("2024-06-05"), day("2024-06-01")

	_, err := env.query.Search(context.Background(), ports.SearchRequest{DateFrom: &from, DateTo: &to, Scope: allScope})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))
}

func TestAuditQuery_SearchDateRangeIsInclusive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.post(t, uuid.New(), "2024-06-01", domain.KindInvoice, "", "10.00")

	today := time.Now().UTC()
	res, err := env.query.Search(ctx, ports.SearchRequest{DateFrom: &today, DateTo: &today, Scope: allScope})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total, "an entry written today falls inside [today, today]")

	yesterday := today.AddDate(0, 0, -1)
	res, err = env.query.Search(ctx, ports.SearchRequest{DateTo: &yesterday, Scope: allScope})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestAuditQuery_TrailRecordsView(t *testing.T) {
	env := newTestEnv(t)
	ctx := staffCtx(uuid.New(), uuid.New())
	rec := env.post(t, uuid.New(), "2024-06-01", domain.KindPayment, domain.MethodCash, "40.00")
	amount := dec("45.00")
	_, err := env.fin.Amend(context.Background(), ports.AmendFinancialRecord{ID: rec.ID, Amount: &amount})
	require.NoError(t, err)

	trail, err := env.query.Trail(ctx, domain.EntityFinancialRecord, rec.ID.String(), allScope)
	require.NoError(t, err)
	assert.Equal(t, 2, trail.TotalLogs)
	assert.Equal(t, domain.ActionCreate, trail.FirstLog.Action)
	assert.Equal(t, domain.ActionUpdate, trail.LastLog.Action)

	entries := env.allEntries(t)
	last := entries[len(entries)-1]
	assert.Equal(t, domain.ActionView, last.Action)
	assert.Equal(t, rec.ID.String(), last.EntityID)
	assert.Equal(t, "audit_trail", last.Metadata["view"])
	assert.Equal(t, "front-desk-1", last.DeviceID)
}

func TestAuditQuery_TrailErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.query.Trail(ctx, "", "x", allScope)
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	_, err = env.query.Trail(ctx, domain.EntityEodLock, uuid.NewString(), allScope)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
	assert.Empty(t, env.allEntries(t), "a miss is not recorded")
}

func TestAuditQuery_Stats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.post(t, uuid.New(), "2024-06-01", domain.KindInvoice, "", "10.00")
	env.post(t, uuid.New(), "2024-06-01", domain.KindInvoice, "", "20.00")

	stats, err := env.query.Stats(ctx, 0, allScope)
	require.NoError(t, err)
	assert.Equal(t, defaultStatsWindow, stats.WindowDays)
	assert.Equal(t, int64(2), stats.Activity.TotalEntries)
	assert.Equal(t, int64(2), stats.Activity.ByAction[string(domain.ActionCreate)])
	assert.Equal(t, int64(2), stats.Activity.ByActor["system"])
	require.NotNil(t, stats.ChainHealth)
	assert.True(t, stats.ChainHealth.Verified)

	_, err = env.query.Stats(ctx, 366, allScope)
	assert.True(t, apperror.Is(err, apperror.CodeValidation))
	_, err = env.query.Stats(ctx, -1, allScope)
	assert.True(t, apperror.Is(err, apperror.CodeValidation))
}

func TestAuditQuery_ExportRedactsAndRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := staffCtx(uuid.New(), uuid.New())

	_, err := env.recorder.RecordRaw(context.Background(), ports.RawRecord{
		EntityType: "Patient",
		EntityID:   "p-7",
		Action:     domain.ActionUpdate,
		Before:     domain.Fields{"phone": "555-0100"},
		After:      domain.Fields{"phone": "555-0199"},
	})
	require.NoError(t, err)

	file, err := env.query.Export(ctx, ports.ExportRequest{Format: ports.ExportCSV, Scope: allScope})
	require.NoError(t, err)
	assert.Equal(t, 1, file.Rows)
	assert.True(t, strings.HasPrefix(file.Filename, "audit_log_"))
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	rows, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1][9], RedactedValue)
	assert.NotContains(t, rows[1][9], "555-0100")

	entries := env.allEntries(t)
	last := entries[len(entries)-1]
	assert.Equal(t, domain.ActionExport, last.Action)
	assert.Equal(t, "csv", last.Metadata["format"])
	assert.Equal(t, false, last.Metadata["include_sensitive"])

	file, err = env.query.Export(ctx, ports.ExportRequest{Format: ports.ExportJSON, IncludeSensitive: true, Scope: allScope})
	require.NoError(t, err)
	assert.Equal(t, 2, file.Rows, "the first export is itself exported")
	assert.Contains(t, string(file.Data), "555-0100")
}

func TestAuditQuery_ExportTruncatesAtCap(t *testing.T) {
	env := newTestEnv(t)
	env.query.exportMaxRows = 3
	for i := 0; i < 5; i++ {
		_, err := env.recorder.RecordView(context.Background(), "Patient", "p-1", nil)
		require.NoError(t, err)
	}

	file, err := env.query.Export(context.Background(), ports.ExportRequest{Format: ports.ExportJSON, Scope: allScope})
	require.NoError(t, err)
	assert.Equal(t, 3, file.Rows)

	entries := env.allEntries(t)
	assert.Equal(t, true, entries[len(entries)-1].Metadata["truncated"])
}

func TestAuditQuery_ExportRejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.query.Export(context.Background(), ports.ExportRequest{Format: "pdf", Scope: allScope})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))
	assert.Empty(t, env.allEntries(t))
}
