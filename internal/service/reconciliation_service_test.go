package service

import (
	"context"
	"testing"

	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preparedEod(t *testing.T, env *testEnv) *domain.EodLock {
	t.Helper()
	lock, err := env.eod.Prepare(context.Background(), ports.PrepareEodRequest{
		BranchID:   uuid.New(),
		Date:       day("2024-06-01"),
		PreparedBy: uuid.New(),
	})
	require.NoError(t, err)
	return lock
}

func TestReconciliation_CreateAndVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eod := preparedEod(t, env)
	cashier, manager := uuid.New(), uuid.New()

	rec, err := env.recon.CreateReconciliation(ctx, ports.CreateReconciliationRequest{
		EodLockID:     eod.ID,
		HandedOverBy:  cashier,
		ReceivedBy:    manager,
		Amount:        dec("1250.00"),
		Denominations: map[string]int{"500": 2, "100": 2, "50": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, eod.BranchID, rec.BranchID)
	assert.False(t, rec.Verified)

	_, err = env.recon.VerifyReconciliation(ctx, rec.ID, cashier)
	assert.True(t, apperror.Is(err, apperror.CodeValidation), "self verification")

	rec, err = env.recon.VerifyReconciliation(ctx, rec.ID, manager)
	require.NoError(t, err)
	assert.True(t, rec.Verified)
	assert.Equal(t, &manager, rec.VerifiedBy)

	_, err = env.recon.VerifyReconciliation(ctx, rec.ID, manager)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidTransition))

	list, err := env.recon.ListReconciliations(ctx, eod.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Verified)

	trail, err := env.ledger.Trail(ctx, domain.EntityCashReconciliation, rec.ID.String(), allScope)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, domain.ActionCashReconciled, trail[0].Action)
	assert.Equal(t, domain.ActionCashHandoverVerified, trail[1].Action)
}

func TestReconciliation_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	eod := preparedEod(t, env)
	a, b := uuid.New(), uuid.New()

	tests := []struct {
		name string
		req  ports.CreateReconciliationRequest
	}{
		{"missing party", ports.CreateReconciliationRequest{EodLockID: eod.ID, HandedOverBy: a, Amount: dec("1")}},
		{"same person", ports.CreateReconciliationRequest{EodLockID: eod.ID, HandedOverBy: a, ReceivedBy: a, Amount: dec("1")}},
		{"negative amount", ports.CreateReconciliationRequest{EodLockID: eod.ID, HandedOverBy: a, ReceivedBy: b, Amount: dec("-1")}},
		{"denominations mismatch", ports.CreateReconciliationRequest{EodLockID: eod.ID, HandedOverBy: a, ReceivedBy: b, Amount: dec("100"), Denominations: map[string]int{"50": 1}}},
		{"bad face value", ports.CreateReconciliationRequest{EodLockID: eod.ID, HandedOverBy: a, ReceivedBy: b, Amount: dec("100"), Denominations: map[string]int{"fifty": 2}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.recon.CreateReconciliation(context.Background(), tc.req)
			assert.True(t, apperror.Is(err, apperror.CodeValidation), "got %v", err)
		})
	}
}

func TestReconciliation_RequiresOpenEod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	branch := uuid.New()

	lock := env.prepareVerified(t, branch, "2024-06-01", "0")
	_, err := env.eod.Lock(ctx, lock.ID, uuid.New())
	require.NoError(t, err)

	_, err = env.recon.CreateReconciliation(ctx, ports.CreateReconciliationRequest{
		EodLockID: lock.ID, HandedOverBy: uuid.New(), ReceivedBy: uuid.New(), Amount: dec("10"),
	})
	assert.True(t, apperror.Is(err, apperror.CodeEodLocked))

	_, err = env.recon.CreateReconciliation(ctx, ports.CreateReconciliationRequest{
		EodLockID: uuid.New(), HandedOverBy: uuid.New(), ReceivedBy: uuid.New(), Amount: dec("10"),
	})
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))

	_, err = env.recon.ListReconciliations(ctx, uuid.New())
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestReconciliation_ExceptionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eod := preparedEod(t, env)
	actor := uuid.New()

	exc, err := env.recon.RaiseException(ctx, ports.RaiseExceptionRequest{
		EodLockID:   eod.ID,
		Type:        domain.ExceptionPaymentMissing,
		Description: "UPI settlement missing for 2 receipts",
		RaisedBy:    &actor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityMedium, exc.Severity)
	assert.Equal(t, domain.ExceptionOpen, exc.Status)

	_, err = env.recon.UpdateException(ctx, ports.UpdateExceptionRequest{ID: exc.ID, Status: domain.ExceptionResolved, Actor: actor})
	assert.True(t, apperror.Is(err, apperror.CodeValidation), "resolution text required")

	exc, err = env.recon.UpdateException(ctx, ports.UpdateExceptionRequest{ID: exc.ID, Status: domain.ExceptionInProgress, Actor: actor})
	require.NoError(t, err)
	assert.Nil(t, exc.ResolvedBy)

	exc, err = env.recon.UpdateException(ctx, ports.UpdateExceptionRequest{
		ID: exc.ID, Status: domain.ExceptionResolved, Resolution: "settled next morning", Actor: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, &actor, exc.ResolvedBy)
	assert.NotNil(t, exc.ResolvedAt)
	assert.Equal(t, "settled next morning", exc.Resolution)

	_, err = env.recon.UpdateException(ctx, ports.UpdateExceptionRequest{ID: exc.ID, Status: domain.ExceptionOpen, Actor: actor})
	assert.True(t, apperror.Is(err, apperror.CodeInvalidTransition), "resolved is terminal")

	_, err = env.recon.UpdateException(ctx, ports.UpdateExceptionRequest{ID: uuid.New(), Status: domain.ExceptionCancelled, Actor: actor})
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestReconciliation_RaiseExceptionOnLockedEod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lock := env.prepareVerified(t, uuid.New(), "2024-06-01", "0")
	_, err := env.eod.Lock(ctx, lock.ID, uuid.New())
	require.NoError(t, err)

	exc, err := env.recon.RaiseException(ctx, ports.RaiseExceptionRequest{
		EodLockID:   lock.ID,
		Type:        domain.ExceptionInvoiceError,
		Severity:    domain.SeverityHigh,
		Description: "duplicate invoice found after close",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityHigh, exc.Severity)

	list, err := env.recon.ListExceptions(ctx, lock.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestReconciliation_RaiseExceptionValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eod := preparedEod(t, env)

	_, err := env.recon.RaiseException(ctx, ports.RaiseExceptionRequest{EodLockID: eod.ID, Type: "THEFT", Description: "x"})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	_, err = env.recon.RaiseException(ctx, ports.RaiseExceptionRequest{EodLockID: eod.ID, Type: domain.ExceptionOther, Severity: "URGENT", Description: "x"})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	_, err = env.recon.RaiseException(ctx, ports.RaiseExceptionRequest{EodLockID: eod.ID, Type: domain.ExceptionOther, Description: "  "})
	assert.True(t, apperror.Is(err, apperror.CodeValidation))

	_, err = env.recon.RaiseException(ctx, ports.RaiseExceptionRequest{EodLockID: uuid.New(), Type: domain.ExceptionOther, Description: "x"})
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}
