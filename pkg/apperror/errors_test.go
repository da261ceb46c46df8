package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("EOD_001", "Bad transition", http.StatusConflict),
			expected: "[EOD_001] Bad transition",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_002", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_002] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
	assert.Nil(t, New("GEN_400", "test", http.StatusBadRequest).Unwrap())
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("lock eod: %w", ErrEodLocked())

	assert.True(t, Is(wrapped, CodeEodLocked))
	assert.False(t, Is(wrapped, CodeAlreadyLocked))
	assert.False(t, Is(fmt.Errorf("plain"), CodeEodLocked))
	assert.False(t, Is(nil, CodeEodLocked))
}

func TestLedgerErrors(t *testing.T) {
	inner := errors.New("lock timeout")
	contention := ErrChainContention(inner)
	assert.Equal(t, "LED_001", contention.Code)
	assert.Equal(t, http.StatusServiceUnavailable, contention.HTTPStatus)
	assert.True(t, errors.Is(contention, inner))

	integrity := ErrChainIntegrityViolation(2, 1)
	assert.Equal(t, "LED_002", integrity.Code)
	assert.Contains(t, integrity.Message, "2 broken links")
	assert.Contains(t, integrity.Message, "1 tampered")

	assert.Equal(t, "LED_003", ErrVerificationInProgress().Code)
}

func TestEodErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidTransition", ErrInvalidTransition("LOCKED", "PREPARED"), "EOD_001", 409},
		{"VerificationIncomplete", ErrVerificationIncomplete([]string{"cash not verified"}), "EOD_002", 409},
		{"AlreadyLocked", ErrAlreadyLocked("b1", "2024-05-01"), "EOD_003", 423},
		{"AlreadyExists", ErrAlreadyExists("End-of-day"), "EOD_004", 409},
		{"EodLocked", ErrEodLocked(), "EOD_005", 423},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestVerificationIncomplete_ListsMissingSteps(t *testing.T) {
	err := ErrVerificationIncomplete([]string{"digital payments not verified", "invoices not verified"})
	assert.Equal(t, "Cannot lock end-of-day: digital payments not verified, invoices not verified", err.Message)
}

func TestSecurityErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidToken", ErrInvalidToken(), "SEC_001", 401},
		{"InvalidSignature", ErrInvalidSignature(), "SEC_002", 401},
		{"ReplayedEvent", ErrReplayedEvent(), "SEC_003", 409},
		{"Forbidden", ErrForbidden(), "SEC_004", 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	dbErr := ErrDatabaseError(inner)
	assert.Equal(t, "SYS_002", dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)
	assert.True(t, errors.Is(dbErr, inner))

	internal := InternalError(inner)
	assert.Equal(t, "SYS_001", internal.Code)

	assert.Equal(t, 429, ErrRateLimitExceeded().HTTPStatus)
}

func TestNotFoundEntity(t *testing.T) {
	err := ErrNotFound("Audit trail")
	assert.Contains(t, err.Message, "Audit trail")
	assert.Equal(t, "GEN_404", err.Code)
	assert.Equal(t, "GEN_400", Validation("bad").Code)
}
