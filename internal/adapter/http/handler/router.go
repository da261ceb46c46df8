package handler

import (
	"time"

	"clinic-ledger/internal/adapter/http/middleware"
	"clinic-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Appender       ports.AuditAppender
	QuerySvc       ports.AuditQueryService
	Verifier       ports.LedgerVerifier
	EodSvc         ports.EodService
	ReconSvc       ports.ReconciliationService
	FinancialSvc   ports.FinancialService
	Webhooks       ports.WebhookIngress
	TokenSvc       ports.TokenService
	RateLimitStore middleware.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	MaxBodyBytes   int64
	Location       *time.Location // clinic business timezone
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBody))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Signed machine-to-machine events (no staff token) ---
	webhookHandler := NewWebhookHandler(deps.Webhooks)
	v1.POST("/webhooks/audit-events", rl("webhook"), middleware.AuditContext(), webhookHandler.Receive)

	// --- Staff routes ---
	staffAuth := v1.Group("", middleware.JWTAuth(deps.TokenSvc, deps.Logger), middleware.AuditContext())
	privileged := middleware.RequireRole(PrivilegedRoles...)

	auditHandler := NewAuditHandler(deps.Appender, deps.QuerySvc, deps.Verifier)
	audit := staffAuth.Group("/audit")
	{
		audit.POST("/entries", rl("audit_write"), auditHandler.AppendEntry)
		audit.GET("/entries", rl("audit_read"), auditHandler.SearchEntries)
		audit.GET("/trail/:entity_type/:entity_id", rl("audit_read"), auditHandler.Trail)
		audit.GET("/verify", privileged, rl("audit_verify"), auditHandler.Verify)
		audit.GET("/stats", rl("audit_read"), auditHandler.Stats)
		audit.GET("/export", rl("audit_export"), auditHandler.Export)
	}

	eodHandler := NewEodHandler(deps.EodSvc, deps.ReconSvc, deps.Location)
	eod := staffAuth.Group("/eod", rl("eod"))
	{
		eod.POST("", eodHandler.Prepare)
		eod.GET("", eodHandler.List)
		eod.GET("/status", eodHandler.Status)
		eod.POST("/reconciliations/:rid/verify", eodHandler.VerifyReconciliation)
		eod.PATCH("/exceptions/:xid", eodHandler.UpdateException)
		eod.GET("/:id", eodHandler.Get)
		eod.POST("/:id/recalculate", eodHandler.Recalculate)
		eod.POST("/:id/verify-cash", eodHandler.VerifyCash)
		eod.POST("/:id/verify-digital", eodHandler.VerifyDigital)
		eod.POST("/:id/verify-invoices", eodHandler.VerifyInvoices)
		eod.POST("/:id/review", eodHandler.Review)
		eod.POST("/:id/send-back", eodHandler.SendBack)
		eod.POST("/:id/lock", eodHandler.Lock)
		eod.POST("/:id/reverse", privileged, eodHandler.Reverse)
		eod.POST("/:id/reconciliations", eodHandler.CreateReconciliation)
		eod.GET("/:id/reconciliations", eodHandler.ListReconciliations)
		eod.POST("/:id/exceptions", eodHandler.RaiseException)
		eod.GET("/:id/exceptions", eodHandler.ListExceptions)
	}

	finHandler := NewFinancialHandler(deps.FinancialSvc)
	records := staffAuth.Group("/financial/records", rl("financial"))
	{
		records.POST("", finHandler.Create)
		records.PUT("/:id", finHandler.Amend)
		records.DELETE("/:id", finHandler.Void)
	}

	return r
}
