package handler

import (
	"time"

	"clinic-ledger/internal/adapter/http/dto"
	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/apperror"
	"clinic-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FinancialHandler serves invoice, payment and refund postings.
type FinancialHandler struct {
	finSvc ports.FinancialService
}

// NewFinancialHandler creates a new FinancialHandler.
func NewFinancialHandler(finSvc ports.FinancialService) *FinancialHandler {
	return &FinancialHandler{finSvc: finSvc}
}

// Create handles POST /api/v1/financial/records.
func (h *FinancialHandler) Create(c *gin.Context) {
	claims, err := staff(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateFinancialRecordRequest
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
	txnDate, _ := time.Parse(dto.DateLayout, req.TxnDate)

	actor := claims.ActorID
	rec, err := h.finSvc.Record(c.Request.Context(), ports.NewFinancialRecord{
		BranchID:  uuid.MustParse(req.BranchID),
		Kind:      domain.FinancialKind(req.Kind),
		Reference: req.Reference,
		Method:    domain.PaymentMethod(req.Method),
		Amount:    amount,
		TxnDate:   txnDate,
		CreatedBy: &actor,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// Amend handles PUT /api/v1/financial/records/:id.
func (h *FinancialHandler) Amend(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.AmendFinancialRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.TrimStrings(&req)

	amend := ports.AmendFinancialRecord{ID: id}
	if req.Amount != nil {
		d, err := dto.ParseMoney(*req.Amount)
		if err != nil {
			response.Error(c, apperror.Validation(err.Error()))
			return
		}
		amend.Amount = &d
	}
	if req.Method != nil {
		m := domain.PaymentMethod(*req.Method)
		amend.Method = &m
	}

	rec, err := h.finSvc.Amend(c.Request.Context(), amend)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rec)
}

// Void handles DELETE /api/v1/financial/records/:id.
func (h *FinancialHandler) Void(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.finSvc.Void(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id, "deleted": true})
}

