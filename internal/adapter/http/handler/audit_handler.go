package handler

import (
	"time"

	"clinic-ledger/internal/adapter/http/dto"
	"clinic-ledger/internal/adapter/http/middleware"
	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/apperror"
	"clinic-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuditHandler serves the ledger read, append and verification endpoints.
type AuditHandler struct {
	appender ports.AuditAppender
	query    ports.AuditQueryService
	verifier ports.LedgerVerifier
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(appender ports.AuditAppender, query ports.AuditQueryService, verifier ports.LedgerVerifier) *AuditHandler {
	return &AuditHandler{appender: appender, query: query, verifier: verifier}
}

// AppendEntry handles POST /api/v1/audit/entries.
// Provenance not given in the body is taken from the calling request.
func (h *AuditHandler) AppendEntry(c *gin.Context) {
	var req dto.AppendEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.TrimStrings(&req)

	meta, _ := domain.RequestMetaFrom(c.Request.Context())
	rec := ports.RawRecord{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Action:     domain.LedgerAction(req.Action),
		Before:     domain.Fields(req.Before),
		After:      domain.Fields(req.After),
		Metadata:   domain.Fields(req.Metadata),
		ActorID:    optionalUUID(req.ActorID),
		BranchID:   optionalUUID(req.BranchID),
		DeviceID:   req.DeviceID,
		IPAddress:  req.IPAddress,
	}
	if rec.EntityID == "" {
		rec.EntityID = domain.EntityIDNew
	}
	if rec.ActorID == nil {
		rec.ActorID = meta.ActorID
	}
	if rec.BranchID == nil {
		rec.BranchID = meta.BranchID
	}
	if rec.DeviceID == "" {
		rec.DeviceID = meta.DeviceID
	}
	if rec.IPAddress == "" {
		rec.IPAddress = meta.IPAddress
	}
	if req.DurationMS != nil {
		d := time.Duration(*req.DurationMS) * time.Millisecond
		rec.Duration = &d
	}

	entry, err := h.appender.RecordRaw(c.Request.Context(), rec)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// SearchEntries handles GET /api/v1/audit/entries.
func (h *AuditHandler) SearchEntries(c *gin.Context) {
	claims, err := staff(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var q dto.SearchEntriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.TrimStrings(&q)

	from, _ := dto.ParseDate(q.DateFrom)
	to, _ := dto.ParseDate(q.DateTo)

	result, err := h.query.Search(c.Request.Context(), ports.SearchRequest{
		ActorID:    optionalUUID(q.ActorID),
		BranchID:   optionalUUID(q.BranchID),
		Action:     q.Action,
		EntityType: q.EntityType,
		EntityID:   q.EntityID,
		DateFrom:   from,
		DateTo:     to,
		Query:      q.Query,
		Scope:      middleware.ScopeFor(claims),
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Entries, response.PageMeta{
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

// Trail handles GET /api/v1/audit/trail/:entity_type/:entity_id.
func (h *AuditHandler) Trail(c *gin.Context) {
	claims, err := staff(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	trail, err := h.query.Trail(c.Request.Context(), c.Param("entity_type"), c.Param("entity_id"), middleware.ScopeFor(claims))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, trail)
}

// Verify handles GET /api/v1/audit/verify?mode=links|full.
func (h *AuditHandler) Verify(c *gin.Context) {
	mode, ok := domain.ParseVerifyMode(c.Query("mode"))
	if !ok {
		response.Error(c, apperror.Validation("mode must be links or full"))
		return
	}

	report, err := h.verifier.Verify(c.Request.Context(), mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// Stats handles GET /api/v1/audit/stats.
func (h *AuditHandler) Stats(c *gin.Context) {
	claims, err := staff(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var q dto.StatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	stats, err := h.query.Stats(c.Request.Context(), q.Days, middleware.ScopeFor(claims))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// Export handles GET /api/v1/audit/export.
func (h *AuditHandler) Export(c *gin.Context) {
	claims, err := staff(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	if q.IncludeSensitive && !isPrivileged(claims) {
		response.Error(c, apperror.ErrForbidden())
		return
	}

	format := ports.ExportFormat(q.Format)
	if format == "" {
		format = ports.ExportCSV
	}
	from, _ := dto.ParseDate(q.DateFrom)
	to, _ := dto.ParseDate(q.DateTo)

	file, err := h.query.Export(c.Request.Context(), ports.ExportRequest{
		Format:           format,
		From:             from,
		To:               to,
		IncludeSensitive: q.IncludeSensitive,
		Scope:            middleware.ScopeFor(claims),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}
