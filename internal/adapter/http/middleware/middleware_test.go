package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	code, _ := body["error_code"].(string)
	return code
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	router := gin.New()
	router.GET("/t", RequestID(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxRequestID))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(HeaderRequestID, "req-abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-abc", w.Body.String())
}

func TestJWTAuth_MissingToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	router := gin.New()
	router.GET("/t", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"", "Basic abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/t", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Equal(t, "SEC_001", errorCode(t, w))
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("bad").Return(nil, errors.New("signature is invalid"))

	router := gin.New()
	router.GET("/t", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_StoresClaims(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	claims := &ports.TokenClaims{ActorID: uuid.New(), Role: domain.RoleManager}
	tokenSvc.EXPECT().Validate("good").Return(claims, nil)

	router := gin.New()
	router.GET("/t", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		got, ok := Claims(c)
		require.True(t, ok)
		c.String(http.StatusOK, got.ActorID.String())
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set("Authorization", "bearer good")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, claims.ActorID.String(), w.Body.String())
}

func withClaims(claims *ports.TokenClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(CtxClaims, claims)
		}
		c.Next()
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		claims *ports.TokenClaims
		want   int
	}{
		{"owner allowed", &ports.TokenClaims{Role: domain.RoleOwner}, http.StatusOK},
		{"case insensitive", &ports.TokenClaims{Role: "ADMIN"}, http.StatusOK},
		{"receptionist forbidden", &ports.TokenClaims{Role: "receptionist"}, http.StatusForbidden},
		{"no claims", nil, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/t", withClaims(tc.claims), RequireRole(domain.RoleAdmin, domain.RoleOwner), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestScopeFor(t *testing.T) {
	actor, branch := uuid.New(), uuid.New()

	assert.Equal(t, ports.ScopeAll, ScopeFor(&ports.TokenClaims{ActorID: actor, Role: domain.RoleAuditor}).Kind)
	assert.Equal(t, ports.ScopeAll, ScopeFor(&ports.TokenClaims{ActorID: actor, Role: domain.RoleOwner}).Kind)

	s := ScopeFor(&ports.TokenClaims{ActorID: actor, BranchID: &branch, Role: domain.RoleManager})
	assert.Equal(t, ports.ScopeBranch, s.Kind)
	assert.Equal(t, &branch, s.BranchID)

	// a manager without a branch falls back to own actions
	s = ScopeFor(&ports.TokenClaims{ActorID: actor, Role: domain.RoleManager})
	assert.Equal(t, ports.ScopeOwn, s.Kind)
	assert.Equal(t, actor, *s.ActorID)

	s = ScopeFor(&ports.TokenClaims{ActorID: actor, BranchID: &branch, Role: "doctor"})
	assert.Equal(t, ports.ScopeOwn, s.Kind)

	assert.Equal(t, ports.ScopeOwn, ScopeFor(nil).Kind)
}

func TestAuditContext_CapturesRequestMeta(t *testing.T) {
	actor, branch := uuid.New(), uuid.New()
	claims := &ports.TokenClaims{ActorID: actor, BranchID: &branch, Role: domain.RoleManager}

	var meta domain.RequestMeta
	router := gin.New()
	router.GET("/t", RequestID(), withClaims(claims), AuditContext(), func(c *gin.Context) {
		meta, _ = domain.RequestMetaFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(HeaderDeviceID, " front-desk-2 ")
	req.Header.Set(HeaderRequestID, "req-9")
	req.RemoteAddr = "198.51.100.4:5123"
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, meta.ActorID)
	assert.Equal(t, actor, *meta.ActorID)
	assert.Equal(t, &branch, meta.BranchID)
	assert.Equal(t, domain.RoleManager, meta.Role)
	assert.Equal(t, "front-desk-2", meta.DeviceID)
	assert.Equal(t, "198.51.100.4", meta.IPAddress)
	assert.Equal(t, "req-9", meta.RequestID)
	assert.False(t, meta.StartTime.IsZero())
}

func TestAuditContext_AnonymousAndLongDevice(t *testing.T) {
	var meta domain.RequestMeta
	router := gin.New()
	router.GET("/t", AuditContext(), func(c *gin.Context) {
		meta, _ = domain.RequestMetaFrom(c.Request.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(HeaderDeviceID, strings.Repeat("d", 300))
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Nil(t, meta.ActorID)
	assert.Len(t, meta.DeviceID, maxDeviceIDLen)
}

func TestMaxBodySize(t *testing.T) {
	router := gin.New()
	router.POST("/t", MaxBodySize(8), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/t", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/t", strings.NewReader("much longer than eight")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zerolog.Nop()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "SYS_001", errorCode(t, w))
}

func TestRequestLogger(t *testing.T) {
	var buf strings.Builder
	router := gin.New()
	router.Use(RequestID(), RequestLogger(zerolog.New(&buf)))
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, float64(404), line["status"])
	assert.NotEmpty(t, line["request_id"])
}
