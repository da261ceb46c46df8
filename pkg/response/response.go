package response

import (
	"errors"
	"mime"
	"net/http"
	"time"

	"clinic-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDKey mirrors middleware.CtxRequestID; this package cannot import middleware.
const requestIDKey = "request_id"

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Data      any    `json:"data"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// PaginatedResponse is the success envelope for listings.
type PaginatedResponse struct {
	Data       any      `json:"data"`
	Pagination PageMeta `json:"pagination"`
	RequestID  string   `json:"request_id"`
	Timestamp  string   `json:"timestamp"`
}

func OK(c *gin.Context, data any) {
	success(c, http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	success(c, http.StatusCreated, data)
}

func Paginated(c *gin.Context, items any, meta PageMeta) {
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       items,
		Pagination: meta,
		RequestID:  requestID(c),
		Timestamp:  now(),
	})
}

// File sends an export as an attachment. Audit data must not sit in shared caches.
func File(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}

// Error maps *apperror.AppError anywhere in the chain to its status and code.
// Anything else is a 500 whose message hides the cause.
func Error(c *gin.Context, err error) {
	status, body := http.StatusInternalServerError, ErrorResponse{
		ErrorCode: apperror.CodeInternal,
		Message:   "Internal server error",
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus
		body.ErrorCode = appErr.Code
		body.Message = appErr.Message
	}
	body.RequestID = requestID(c)
	body.Timestamp = now()

	_ = c.Error(err)
	c.JSON(status, body)
}

func success(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{
		Data:      data,
		RequestID: requestID(c),
		Timestamp: now(),
	})
}

func requestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return uuid.NewString()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
