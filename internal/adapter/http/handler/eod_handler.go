package handler

import (
	"time"

	"clinic-ledger/internal/adapter/http/dto"
	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EodHandler serves the end-of-day close workflow and its satellites.
type EodHandler struct {
	eodSvc   ports.EodService
	reconSvc ports.ReconciliationService
	loc      *time.Location
	now      func() time.Time
}

// NewEodHandler creates a new EodHandler. loc is the clinic's business timezone; nil means UTC.
func NewEodHandler(eodSvc ports.EodService, reconSvc ports.ReconciliationService, loc *time.Location) *EodHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &EodHandler{eodSvc: eodSvc, reconSvc: reconSvc, loc: loc, now: time.Now}
}

// Prepare handles POST /api/v1/eod.
func (h *EodHandler) Prepare(c *gin.Context) {
	claims, err := staff(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.PrepareEodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.TrimStrings(&req)

	date, _ := time.Parse(dto.DateLayout, req.Date)
	var opening *decimal.Decimal
	if req.OpeningCash != nil {
		d, err := dto.ParseMoney(*req.OpeningCash)
		if err != nil {
			response.Error(c, bindError(err))
			return
		}
		opening = &d
	}

	lock, err := h.eodSvc.Prepare(c.Request.Context(), ports.PrepareEodRequest{
		BranchID:    uuid.MustParse(req.BranchID),
		Date:        date,
		OpeningCash: opening,
		PreparedBy:  claims.ActorID,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lock)
}

// List handles GET /api/v1/eod.
func (h *EodHandler) List(c *gin.Context) {
	var q dto.ListEodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	params := ports.EodListParams{BranchID: optionalUUID(q.BranchID)}
	params.From, _ = dto.ParseDate(q.From)
	params.To, _ = dto.ParseDate(q.To)
	if q.Status != "" {
		status := domain.EodStatus(q.Status)
		params.Status = &status
	}

	locks, err := h.eodSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	if locks == nil {
		locks = []domain.EodLock{}
	}
	response.OK(c, locks)
}

// Status handles GET /api/v1/eod/status?branch_id=&date=.
func (h *EodHandler) Status(c *gin.Context) {
	var q dto.EodStatusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	if q.Date == "" {
		q.Date = h.now().In(h.loc).Format(dto.DateLayout)
	}
	date, _ := time.Parse(dto.DateLayout, q.Date)
	locked, err := h.eodSvc.IsDateLocked(c.Request.Context(), uuid.MustParse(q.BranchID), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.EodStatusResponse{BranchID: q.BranchID, Date: q.Date, Locked: locked})
}

// Get handles GET /api/v1/eod/:id.
func (h *EodHandler) Get(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	lock, err := h.eodSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lock)
}

// transition runs a workflow step that takes the EOD id and the acting staff member.
func (h *EodHandler) transition(c *gin.Context, step func(id, actor uuid.UUID) (*domain.EodLock, error)) {
	claims, err := staff(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	lock, err := step(id, claims.ActorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lock)
}

// Recalculate handles POST /api/v1/eod/:id/recalculate.
func (h *EodHandler) Recalculate(c *gin.Context) {
	h.transition(c, func(id, _ uuid.UUID) (*domain.EodLock, error) {
		return h.eodSvc.RecalculateTotals(c.Request.Context(), id)
	})
}

// VerifyCash handles POST /api/v1/eod/:id/verify-cash.
func (h *EodHandler) VerifyCash(c *gin.Context) {
	var req dto.VerifyCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	actual, err := dto.ParseMoney(req.ActualCash)
	if err != nil {
		response.Error(c, bindError(err))
		return
	}

	h.transition(c, func(id, actor uuid.UUID) (*domain.EodLock, error) {
		return h.eodSvc.VerifyCash(c.Request.Context(), id, actual, actor)
	})
}

// VerifyDigital handles POST /api/v1/eod/:id/verify-digital.
func (h *EodHandler) VerifyDigital(c *gin.Context) {
	h.transition(c, func(id, actor uuid.UUID) (*domain.EodLock, error) {
		return h.eodSvc.VerifyDigitalPayments(c.Request.Context(), id, actor)
	})
}

// VerifyInvoices handles POST /api/v1/eod/:id/verify-invoices.
func (h *EodHandler) VerifyInvoices(c *gin.Context) {
	h.transition(c, func(id, actor uuid.UUID) (*domain.EodLock, error) {
		return h.eodSvc.VerifyInvoices(c.Request.Context(), id, actor)
	})
}

// Review handles POST /api/v1/eod/:id/review. The body is optional.
func (h *EodHandler) Review(c *gin.Context) {
	var req dto.NotesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err))
			return
		}
		dto.TrimStrings(&req)
	}

	h.transition(c, func(id, actor uuid.UUID) (*domain.EodLock, error) {
		return h.eodSvc.Review(c.Request.Context(), id, actor, req.Notes)
	})
}

// SendBack handles POST /api/v1/eod/:id/send-back.
func (h *EodHandler) SendBack(c *gin.Context) {
	var req dto.ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.TrimStrings(&req)

	h.transition(c, func(id, actor uuid.UUID) (*domain.EodLock, error) {
		return h.eodSvc.SendBack(c.Request.Context(), id, actor, req.Reason)
	})
}

// Lock handles POST /api/v1/eod/:id/lock.
func (h *EodHandler) Lock(c *gin.Context) {
	h.transition(c, func(id, actor uuid.UUID) (*domain.EodLock, error) {
		return h.eodSvc.Lock(c.Request.Context(), id, actor)
	})
}

// Reverse handles POST /api/v1/eod/:id/reverse. The route is role-guarded.
func (h *EodHandler) Reverse(c *gin.Context) {
	var req dto.ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.TrimStrings(&req)

	h.transition(c, func(id, actor uuid.UUID) (*domain.EodLock, error) {
		return h.eodSvc.Reverse(c.Request.Context(), id, actor, req.Reason)
	})
}

// CreateReconciliation handles POST /api/v1/eod/:id/reconciliations.
func (h *EodHandler) CreateReconciliation(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.TrimStrings(&req)
	amount, err := dto.ParseMoney(req.Amount)
	if err != nil {
		response.Error(c, bindError(err))
		return
	}

	rec, err := h.reconSvc.CreateReconciliation(c.Request.Context(), ports.CreateReconciliationRequest{
		EodLockID:     id,
		HandedOverBy:  uuid.MustParse(req.HandedOverBy),
		ReceivedBy:    uuid.MustParse(req.ReceivedBy),
		Amount:        amount,
		Denominations: req.Denominations,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// ListReconciliations handles GET /api/v1/eod/:id/reconciliations.
func (h *EodHandler) ListReconciliations(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	list, err := h.reconSvc.ListReconciliations(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []domain.CashReconciliation{}
	}
	response.OK(c, list)
}

// VerifyReconciliation handles POST /api/v1/eod/reconciliations/:rid/verify.
func (h *EodHandler) VerifyReconciliation(c *gin.Context) {
	claims, err := staff(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rid, err := pathUUID(c, "rid")
	if err != nil {
		response.Error(c, err)
		return
	}

	rec, err := h.reconSvc.VerifyReconciliation(c.Request.Context(), rid, claims.ActorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rec)
}

// RaiseException handles POST /api/v1/eod/:id/exceptions.
func (h *EodHandler) RaiseException(c *gin.Context) {
	claims, err := staff(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.RaiseExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.TrimStrings(&req)

	var amount *decimal.Decimal
	if req.Amount != nil {
		d, err := dto.ParseMoney(*req.Amount)
		if err != nil {
			response.Error(c, bindError(err))
			return
		}
		amount = &d
	}

	actor := claims.ActorID
	exc, err := h.reconSvc.RaiseException(c.Request.Context(), ports.RaiseExceptionRequest{
		EodLockID:   id,
		Type:        domain.ExceptionType(req.Type),
		Severity:    domain.ExceptionSeverity(req.Severity),
		Description: req.Description,
		Amount:      amount,
		RaisedBy:    &actor,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exc)
}

// ListExceptions handles GET /api/v1/eod/:id/exceptions.
func (h *EodHandler) ListExceptions(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	list, err := h.reconSvc.ListExceptions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []domain.EodException{}
	}
	response.OK(c, list)
}

// UpdateException handles PATCH /api/v1/eod/exceptions/:xid.
func (h *EodHandler) UpdateException(c *gin.Context) {
	claims, err := staff(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	xid, err := pathUUID(c, "xid")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.TrimStrings(&req)

	exc, err := h.reconSvc.UpdateException(c.Request.Context(), ports.UpdateExceptionRequest{
		ID:         xid,
		Status:     domain.ExceptionStatus(req.Status),
		Resolution: req.Resolution,
		Actor:      claims.ActorID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, exc)
}
