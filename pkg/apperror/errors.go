package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Is reports whether err carries an AppError with the given code anywhere in its chain.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

const (
	CodeChainContention        = "LED_001"
	CodeChainIntegrity         = "LED_002"
	CodeVerificationInProgress = "LED_003"

	CodeInvalidTransition      = "EOD_001"
	CodeVerificationIncomplete = "EOD_002"
	CodeAlreadyLocked          = "EOD_003"
	CodeAlreadyExists          = "EOD_004"
	CodeEodLocked              = "EOD_005"

	CodeValidation = "GEN_400"
	CodeNotFound   = "GEN_404"

	CodeInvalidToken     = "SEC_001"
	CodeInvalidSignature = "SEC_002"
	CodeReplayedEvent    = "SEC_003"
	CodeForbidden        = "SEC_004"

	CodeRateLimit = "RATE_001"
	CodeInternal  = "SYS_001"
	CodeDatabase  = "SYS_002"
)

// ---- Ledger (LED) ----

// ErrChainContention is retryable: the append could not serialize against the chain tail in time.
func ErrChainContention(err error) *AppError {
	return Wrap(CodeChainContention, "Ledger is busy, retry the operation", http.StatusServiceUnavailable, err)
}

func ErrChainIntegrityViolation(broken, tampered int) *AppError {
	return New(CodeChainIntegrity,
		fmt.Sprintf("Ledger integrity violation: %d broken links, %d tampered entries", broken, tampered),
		http.StatusConflict)
}

func ErrVerificationInProgress() *AppError {
	return New(CodeVerificationInProgress, "A full chain verification is already running", http.StatusConflict)
}

// ---- End of day (EOD) ----

func ErrInvalidTransition(from, to string) *AppError {
	return New(CodeInvalidTransition,
		fmt.Sprintf("Cannot move end-of-day from %s to %s", from, to),
		http.StatusConflict)
}

// ErrVerificationIncomplete names every verification step still missing.
func ErrVerificationIncomplete(missing []string) *AppError {
	return New(CodeVerificationIncomplete,
		"Cannot lock end-of-day: "+strings.Join(missing, ", "),
		http.StatusConflict)
}

func ErrAlreadyLocked(branch, date string) *AppError {
	return New(CodeAlreadyLocked,
		fmt.Sprintf("Financial day %s is locked for branch %s", date, branch),
		http.StatusLocked)
}

func ErrAlreadyExists(entity string) *AppError {
	return New(CodeAlreadyExists, fmt.Sprintf("%s already exists", entity), http.StatusConflict)
}

func ErrEodLocked() *AppError {
	return New(CodeEodLocked, "End-of-day is locked, totals are frozen", http.StatusLocked)
}

// ---- General (GEN) ----

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// Validation returns a GEN_400 validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// ---- Security (SEC) ----

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInvalidSignature() *AppError {
	return New(CodeInvalidSignature, "Invalid signature", http.StatusUnauthorized)
}

func ErrReplayedEvent() *AppError {
	return New(CodeReplayedEvent, "Event has already been received", http.StatusConflict)
}

func ErrForbidden() *AppError {
	return New(CodeForbidden, "Insufficient privileges", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimit, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeDatabase, "Internal database error", http.StatusInternalServerError, err)
}
