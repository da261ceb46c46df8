package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/internal/core/ports/mocks"
	"clinic-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router   *gin.Engine
	appender *mocks.MockAuditAppender
	query    *mocks.MockAuditQueryService
	verifier *mocks.MockLedgerVerifier
	eod      *mocks.MockEodService
	recon    *mocks.MockReconciliationService
	fin      *mocks.MockFinancialService
	webhooks *mocks.MockWebhookIngress

	owner   *ports.TokenClaims
	manager *ports.TokenClaims
	clerk   *ports.TokenClaims
}

func newTestAPI(t *testing.T) *testAPI {
	ctrl := gomock.NewController(t)
	branch := uuid.New()
	api := &testAPI{
		appender: mocks.NewMockAuditAppender(ctrl),
		query:    mocks.NewMockAuditQueryService(ctrl),
		verifier: mocks.NewMockLedgerVerifier(ctrl),
		eod:      mocks.NewMockEodService(ctrl),
		recon:    mocks.NewMockReconciliationService(ctrl),
		fin:      mocks.NewMockFinancialService(ctrl),
		webhooks: mocks.NewMockWebhookIngress(ctrl),
		owner:    &ports.TokenClaims{ActorID: uuid.New(), Role: domain.RoleOwner},
		manager:  &ports.TokenClaims{ActorID: uuid.New(), BranchID: &branch, Role: domain.RoleManager},
		clerk:    &ports.TokenClaims{ActorID: uuid.New(), BranchID: &branch, Role: "receptionist"},
	}

	tokens := mocks.NewMockTokenService(ctrl)
	tokens.EXPECT().Validate(gomock.Any()).DoAndReturn(func(tok string) (*ports.TokenClaims, error) {
		switch tok {
		case "owner":
			return api.owner, nil
		case "manager":
			return api.manager, nil
		case "clerk":
			return api.clerk, nil
		}
		return nil, errors.New("token is malformed")
	}).AnyTimes()

	api.router = SetupRouter(RouterDeps{
		Appender:     api.appender,
		QuerySvc:     api.query,
		Verifier:     api.verifier,
		EodSvc:       api.eod,
		ReconSvc:     api.recon,
		FinancialSvc: api.fin,
		Webhooks:     api.webhooks,
		TokenSvc:     tokens,
		Logger:       zerolog.Nop(),
	})
	return api
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// --- Health ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck(t *testing.T) {
	router := gin.New()
	router.GET("/ok", HealthCheck(stubChecker{name: "postgres"}))
	router.GET("/bad", HealthCheck(stubChecker{name: "postgres"}, stubChecker{name: "redis", err: errors.New("dial tcp: refused")}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	checks := decode(t, w)["checks"].(map[string]interface{})
	assert.Equal(t, "healthy", checks["postgres"])
	assert.Contains(t, checks["redis"], "unhealthy")
}

// --- Auth ---

func TestStaffRoutes_RequireToken(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/v1/audit/entries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/v1/eod", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperror.CodeInvalidToken, decode(t, w)["error_code"])
}

// --- Audit ---

func TestAppendEntry_FillsProvenanceFromRequest(t *testing.T) {
	api := newTestAPI(t)

	api.appender.EXPECT().RecordRaw(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rec ports.RawRecord) (*domain.LedgerEntry, error) {
		assert.Equal(t, "Patient", rec.EntityType)
		assert.Equal(t, domain.EntityIDNew, rec.EntityID)
		assert.Equal(t, domain.LedgerAction("CREATE"), rec.Action)
		assert.Equal(t, "Asha", rec.After["name"])
		require.NotNil(t, rec.ActorID)
		assert.Equal(t, api.manager.ActorID, *rec.ActorID)
		assert.Equal(t, api.manager.BranchID, rec.BranchID)
		require.NotNil(t, rec.Duration)
		assert.Equal(t, 1500*time.Millisecond, *rec.Duration)
		return &domain.LedgerEntry{ID: 7, RecordHash: strings.Repeat("a", 64)}, nil
	})

	w := api.do(http.MethodPost, "/api/v1/audit/entries", "manager", map[string]interface{}{
		"entity_type": "Patient",
		"action":      "CREATE",
		"after":       map[string]interface{}{"name": "Asha"},
		"duration_ms": 1500,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["id"])
}

func TestAppendEntry_Validation(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/audit/entries", "owner", `{"action":"CREATE"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/v1/audit/entries", "owner", `{"entity_type":"Patient","action":"X","actor_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEntries_ScopesByRole(t *testing.T) {
	api := newTestAPI(t)

	api.query.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req ports.SearchRequest) (*ports.SearchResult, error) {
		assert.Equal(t, ports.ScopeBranch, req.Scope.Kind)
		assert.Equal(t, api.manager.BranchID, req.Scope.BranchID)
		assert.Equal(t, "FinancialRecord", req.EntityType)
		require.NotNil(t, req.DateFrom)
		assert.Equal(t, 2024, req.DateFrom.Year())
		assert.Equal(t, 2, req.Page)
		return &ports.SearchResult{Entries: []domain.LedgerEntry{{ID: 3}}, Total: 21, Page: 2, PageSize: 20}, nil
	})

	w := api.do(http.MethodGet, "/api/v1/audit/entries?entity_type=FinancialRecord&date_from=2024-06-01&page=2", "manager", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Len(t, resp["data"], 1)
	assert.Equal(t, float64(21), resp["pagination"].(map[string]interface{})["total"])
}

func TestSearchEntries_BadDate(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodGet, "/api/v1/audit/entries?date_from=06/01/2024", "owner", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrail(t *testing.T) {
	api := newTestAPI(t)
	id := uuid.NewString()

	api.query.EXPECT().Trail(gomock.Any(), "EodLock", id, ports.Scope{Kind: ports.ScopeOwn, ActorID: &api.clerk.ActorID}).
		Return(nil, apperror.ErrNotFound("Audit trail"))

	w := api.do(http.MethodGet, "/api/v1/audit/trail/EodLock/"+id, "clerk", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerify_PrivilegedOnly(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/v1/audit/verify", "manager", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/v1/audit/verify?mode=deep", "owner", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	api.verifier.EXPECT().Verify(gomock.Any(), domain.VerifyLinks).Return(&domain.VerificationReport{
		Mode: domain.VerifyLinks, Verified: false, TotalEntries: 4,
		BrokenLinks: []domain.BrokenLink{{EntryID: 3}},
	}, nil)
	w = api.do(http.MethodGet, "/api/v1/audit/verify?mode=links", "owner", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["verified"])
	assert.Len(t, data["broken_links"], 1)
}

func TestStats(t *testing.T) {
	api := newTestAPI(t)
	api.query.EXPECT().Stats(gomock.Any(), 7, ports.Scope{Kind: ports.ScopeAll}).Return(&ports.AuditStats{WindowDays: 7}, nil)

	w := api.do(http.MethodGet, "/api/v1/audit/stats?days=7", "owner", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExport(t *testing.T) {
	api := newTestAPI(t)

	api.query.EXPECT().Export(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req ports.ExportRequest) (*ports.ExportFile, error) {
		assert.Equal(t, ports.ExportCSV, req.Format)
		assert.False(t, req.IncludeSensitive)
		return &ports.ExportFile{Filename: "audit_log_20240601.csv", ContentType: "text/csv", Data: []byte("id\n1\n"), Rows: 1}, nil
	})

	w := api.do(http.MethodGet, "/api/v1/audit/export", "manager", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "audit_log_20240601.csv")
	assert.Equal(t, "id\n1\n", w.Body.String())

	w = api.do(http.MethodGet, "/api/v1/audit/export?include_sensitive=true", "manager", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/v1/audit/export?format=pdf", "owner", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- EOD ---

func TestPrepareEod(t *testing.T) {
	api := newTestAPI(t)
	branch := uuid.New()

	api.eod.EXPECT().Prepare(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req ports.PrepareEodRequest) (*domain.EodLock, error) {
		assert.Equal(t, branch, req.BranchID)
		assert.Equal(t, api.manager.ActorID, req.PreparedBy)
		assert.Equal(t, "2024-06-01", req.Date.Format("2006-01-02"))
		require.NotNil(t, req.OpeningCash)
		assert.True(t, req.OpeningCash.Equal(decimal.RequireFromString("500")))
		return &domain.EodLock{ID: uuid.New(), BranchID: branch, Status: domain.EodStatusPrepared}, nil
	})

	w := api.do(http.MethodPost, "/api/v1/eod", "manager", map[string]interface{}{
		"branch_id":    branch.String(),
		"date":         "2024-06-01",
		"opening_cash": "500.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "PREPARED", decode(t, w)["data"].(map[string]interface{})["status"])
}

func TestPrepareEod_AlreadyExists(t *testing.T) {
	api := newTestAPI(t)
	api.eod.EXPECT().Prepare(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrAlreadyExists("End-of-day"))

	w := api.do(http.MethodPost, "/api/v1/eod", "manager", map[string]interface{}{
		"branch_id": uuid.NewString(),
		"date":      "2024-06-01",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeAlreadyExists, decode(t, w)["error_code"])
}

func TestEodStatusAndList(t *testing.T) {
	api := newTestAPI(t)
	branch := uuid.New()

	api.eod.EXPECT().IsDateLocked(gomock.Any(), branch, gomock.Any()).Return(true, nil)
	w := api.do(http.MethodGet, "/api/v1/eod/status?branch_id="+branch.String()+"&date=2024-06-01", "clerk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["data"].(map[string]interface{})["locked"])

	api.eod.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p ports.EodListParams) ([]domain.EodLock, error) {
		require.NotNil(t, p.Status)
		assert.Equal(t, domain.EodStatusLocked, *p.Status)
		return nil, nil
	})
	w = api.do(http.MethodGet, "/api/v1/eod?status=LOCKED", "owner", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decode(t, w)["data"])

	w = api.do(http.MethodGet, "/api/v1/eod?status=OPEN", "owner", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyCash(t *testing.T) {
	api := newTestAPI(t)
	id := uuid.New()

	api.eod.EXPECT().VerifyCash(gomock.Any(), id, gomock.Any(), api.manager.ActorID).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, actual decimal.Decimal, _ uuid.UUID) (*domain.EodLock, error) {
			assert.True(t, actual.Equal(decimal.RequireFromString("1195")))
			return &domain.EodLock{ID: id, HasDiscrepancies: true, DiscrepancyNotes: "Cash short by 5.00"}, nil
		})

	w := api.do(http.MethodPost, "/api/v1/eod/"+id.String()+"/verify-cash", "manager", map[string]string{"actual_cash": "1195.00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["data"].(map[string]interface{})["has_discrepancies"])

	w = api.do(http.MethodPost, "/api/v1/eod/"+id.String()+"/verify-cash", "manager", map[string]string{"actual_cash": "12.345"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkflowSteps(t *testing.T) {
	api := newTestAPI(t)
	id := uuid.New()
	actor := api.manager.ActorID
	lock := &domain.EodLock{ID: id}

	api.eod.EXPECT().RecalculateTotals(gomock.Any(), id).Return(lock, nil)
	api.eod.EXPECT().VerifyDigitalPayments(gomock.Any(), id, actor).Return(lock, nil)
	api.eod.EXPECT().VerifyInvoices(gomock.Any(), id, actor).Return(lock, nil)
	api.eod.EXPECT().Review(gomock.Any(), id, actor, "").Return(lock, nil)
	api.eod.EXPECT().SendBack(gomock.Any(), id, actor, "card slip missing").Return(lock, nil)
	api.eod.EXPECT().Lock(gomock.Any(), id, actor).Return(nil, apperror.ErrVerificationIncomplete([]string{"cash"}))

	base := "/api/v1/eod/" + id.String()
	assert.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/recalculate", "manager", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/verify-digital", "manager", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/verify-invoices", "manager", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/review", "manager", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/send-back", "manager", map[string]string{"reason": " card slip missing "}).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, base+"/send-back", "manager", nil).Code)

	w := api.do(http.MethodPost, base+"/lock", "manager", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeVerificationIncomplete, decode(t, w)["error_code"])

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/v1/eod/not-a-uuid/lock", "manager", nil).Code)
}

func TestReverse_PrivilegedOnly(t *testing.T) {
	api := newTestAPI(t)
	id := uuid.New()
	path := "/api/v1/eod/" + id.String() + "/reverse"

	w := api.do(http.MethodPost, path, "manager", map[string]string{"reason": "late settlement"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	api.eod.EXPECT().Reverse(gomock.Any(), id, api.owner.ActorID, "late settlement").
		Return(&domain.EodLock{ID: id, Status: domain.EodStatusReversed}, nil)
	w = api.do(http.MethodPost, path, "owner", map[string]string{"reason": "late settlement"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "REVERSED", decode(t, w)["data"].(map[string]interface{})["status"])
}

func TestReconciliationRoutes(t *testing.T) {
	api := newTestAPI(t)
	eodID, recID := uuid.New(), uuid.New()
	cashier, receiver := uuid.New(), uuid.New()

	api.recon.EXPECT().CreateReconciliation(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req ports.CreateReconciliationRequest) (*domain.CashReconciliation, error) {
		assert.Equal(t, eodID, req.EodLockID)
		assert.Equal(t, cashier, req.HandedOverBy)
		assert.Equal(t, 2, req.Denominations["500"])
		return &domain.CashReconciliation{ID: recID, EodLockID: eodID}, nil
	})
	w := api.do(http.MethodPost, "/api/v1/eod/"+eodID.String()+"/reconciliations", "manager", map[string]interface{}{
		"handed_over_by": cashier.String(),
		"received_by":    receiver.String(),
		"amount":         "1000",
		"denominations":  map[string]int{"500": 2},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	api.recon.EXPECT().VerifyReconciliation(gomock.Any(), recID, api.manager.ActorID).Return(&domain.CashReconciliation{ID: recID, Verified: true}, nil)
	w = api.do(http.MethodPost, "/api/v1/eod/reconciliations/"+recID.String()+"/verify", "manager", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	api.recon.EXPECT().ListReconciliations(gomock.Any(), eodID).Return(nil, nil)
	w = api.do(http.MethodGet, "/api/v1/eod/"+eodID.String()+"/reconciliations", "manager", nil)
	assert.Equal(t, []interface{}{}, decode(t, w)["data"])
}

func TestExceptionRoutes(t *testing.T) {
	api := newTestAPI(t)
	eodID, excID := uuid.New(), uuid.New()

	api.recon.EXPECT().RaiseException(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req ports.RaiseExceptionRequest) (*domain.EodException, error) {
		assert.Equal(t, domain.ExceptionCashShortage, req.Type)
		require.NotNil(t, req.Amount)
		assert.Equal(t, "5", req.Amount.String())
		assert.Equal(t, &api.clerk.ActorID, req.RaisedBy)
		return &domain.EodException{ID: excID, Status: domain.ExceptionOpen}, nil
	})
	w := api.do(http.MethodPost, "/api/v1/eod/"+eodID.String()+"/exceptions", "clerk", map[string]interface{}{
		"type":        "CASH_SHORTAGE",
		"description": "drawer short",
		"amount":      "5.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	api.recon.EXPECT().UpdateException(gomock.Any(), ports.UpdateExceptionRequest{
		ID: excID, Status: domain.ExceptionResolved, Resolution: "found in safe", Actor: api.manager.ActorID,
	}).Return(&domain.EodException{ID: excID, Status: domain.ExceptionResolved}, nil)
	w = api.do(http.MethodPatch, "/api/v1/eod/exceptions/"+excID.String(), "manager", map[string]string{
		"status": "RESOLVED", "resolution": "found in safe",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	api.recon.EXPECT().ListExceptions(gomock.Any(), eodID).Return([]domain.EodException{{ID: excID}}, nil)
	w = api.do(http.MethodGet, "/api/v1/eod/"+eodID.String()+"/exceptions", "owner", nil)
	assert.Len(t, decode(t, w)["data"], 1)
}

// --- Financial ---

func TestFinancialRecordRoutes(t *testing.T) {
	api := newTestAPI(t)
	branch, id := uuid.New(), uuid.New()

	api.fin.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req ports.NewFinancialRecord) (*domain.FinancialRecord, error) {
		assert.Equal(t, domain.KindPayment, req.Kind)
		assert.Equal(t, domain.MethodUPI, req.Method)
		assert.Equal(t, &api.clerk.ActorID, req.CreatedBy)
		return &domain.FinancialRecord{ID: id, BranchID: branch, Kind: req.Kind, Amount: req.Amount}, nil
	})
	w := api.do(http.MethodPost, "/api/v1/financial/records", "clerk", map[string]string{
		"branch_id": branch.String(),
		"kind":      "payment",
		"reference": "RCPT-17",
		"method":    "upi",
		"amount":    "250.00",
		"txn_date":  "2024-06-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	api.fin.EXPECT().Amend(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrAlreadyLocked(branch.String(), "2024-06-01"))
	w = api.do(http.MethodPut, "/api/v1/financial/records/"+id.String(), "clerk", map[string]string{"amount": "260"})
	assert.Equal(t, http.StatusLocked, w.Code)

	api.fin.EXPECT().Void(gomock.Any(), id).Return(nil)
	w = api.do(http.MethodDelete, "/api/v1/financial/records/"+id.String(), "clerk", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, "/api/v1/financial/records", "clerk", map[string]string{
		"branch_id": branch.String(), "kind": "payment", "amount": "-1", "txn_date": "2024-06-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Webhook ---

func TestWebhookReceive(t *testing.T) {
	api := newTestAPI(t)

	api.webhooks.EXPECT().Receive(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, ev domain.WebhookEvent) (*domain.LedgerEntry, error) {
		assert.Equal(t, "LOGIN_FAILED", ev.EventType)
		assert.Equal(t, int64(1717232400), ev.Timestamp.Unix())
		assert.Equal(t, json.Number("3"), ev.Data["attempts"])
		meta, ok := domain.RequestMetaFrom(ctx)
		require.True(t, ok)
		assert.Nil(t, meta.ActorID)
		return &domain.LedgerEntry{ID: 11, RecordHash: "abc"}, nil
	})

	w := api.do(http.MethodPost, "/api/v1/webhooks/audit-events", "", `{
		"event_type": "LOGIN_FAILED",
		"log_id": "evt-1",
		"timestamp": "2024-06-01T09:00:00Z",
		"data": {"attempts": 3},
		"signature": "deadbeef"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(11), decode(t, w)["data"].(map[string]interface{})["entry_id"])
}

func TestWebhookReceive_Rejections(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/webhooks/audit-events", "", `{"event_type":"X","log_id":"e","timestamp":"yesterday","signature":"s"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/v1/webhooks/audit-events", "", `{"event_type":"X","log_id":"e","timestamp":"2024-06-01T09:00:00Z","data":[1],"signature":"s"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	api.webhooks.EXPECT().Receive(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInvalidSignature())
	w = api.do(http.MethodPost, "/api/v1/webhooks/audit-events", "", `{"event_type":"X","log_id":"e","timestamp":"2024-06-01T09:00:00Z","signature":"s"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperror.CodeInvalidSignature, decode(t, w)["error_code"])
}

func TestEodStatus_DefaultsToTodayInClinicTimezone(t *testing.T) {
	ctrl := gomock.NewController(t)
	eodSvc := mocks.NewMockEodService(ctrl)
	kolkata := time.FixedZone("IST", 5*3600+1800)

	h := NewEodHandler(eodSvc, nil, kolkata)
	// 20:00 UTC on 1 June is already 2 June at the clinic
	h.now = func() time.Time { return time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC) }

	branch := uuid.New()
	eodSvc.EXPECT().IsDateLocked(gomock.Any(), branch, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)).Return(false, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/eod/status?branch_id="+branch.String(), nil)

	h.Status(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-06-02", decode(t, w)["data"].(map[string]interface{})["date"])
}
