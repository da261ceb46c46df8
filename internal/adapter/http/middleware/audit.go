package middleware

import (
	"strings"
	"time"

	"clinic-ledger/internal/core/domain"

	"github.com/gin-gonic/gin"
)

const maxDeviceIDLen = 128

// AuditContext attaches ledger provenance to the request context: actor, branch and role from
// the staff token, device id, client IP, request id and start time. Missing pieces stay empty.
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := domain.RequestMeta{
			IPAddress: c.ClientIP(),
			RequestID: c.GetString(CtxRequestID),
			StartTime: time.Now(),
		}
		if device := strings.TrimSpace(c.GetHeader(HeaderDeviceID)); device != "" {
			if len(device) > maxDeviceIDLen {
				device = device[:maxDeviceIDLen]
			}
			meta.DeviceID = device
		}
		if claims, ok := Claims(c); ok {
			actor := claims.ActorID
			meta.ActorID = &actor
			meta.BranchID = claims.BranchID
			meta.Role = claims.Role
		}

		c.Request = c.Request.WithContext(domain.WithRequestMeta(c.Request.Context(), meta))
		c.Next()
	}
}
