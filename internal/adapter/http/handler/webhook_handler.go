package handler

import (
	"time"

	"clinic-ledger/internal/adapter/http/dto"
	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/apperror"
	"clinic-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler accepts signed audit events from external systems.
type WebhookHandler struct {
	ingress ports.WebhookIngress
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(ingress ports.WebhookIngress) *WebhookHandler {
	return &WebhookHandler{ingress: ingress}
}

// Receive handles POST /api/v1/webhooks/audit-events.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var req dto.WebhookEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		response.Error(c, apperror.Validation("timestamp must be RFC3339"))
		return
	}

	var data domain.Fields
	if len(req.Data) > 0 {
		if data, err = domain.DecodeFields(req.Data); err != nil {
			response.Error(c, apperror.Validation("data must be a JSON object"))
			return
		}
	}

	entry, err := h.ingress.Receive(c.Request.Context(), domain.WebhookEvent{
		EventType: req.EventType,
		LogID:     req.LogID,
		Timestamp: ts,
		Data:      data,
		Signature: req.Signature,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"entry_id": entry.ID, "record_hash": entry.RecordHash})
}
