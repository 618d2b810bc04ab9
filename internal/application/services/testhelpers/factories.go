package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/domain"
	"github.com/stretchr/testify/require"
)

// CreatePendingReference inserts a Multibanco reference record in the
// PENDING state and returns it.
func CreatePendingReference(t *testing.T, ctx context.Context, store application.RecordStore, transactionID int64, amountCents int64) *domain.PaymentRecord {
	expires := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	rec := &domain.PaymentRecord{
		OrderID:       "order-" + uuid.New().String(),
		TransactionID: transactionID,
		Method:        domain.MethodMultibanco,
		AmountCents:   amountCents,
		State:         domain.StatePending,
		Reference:     "123456789",
		ATMEntity:     "11249",
		ExpiresAt:     &expires,
		CreatedAt:     time.Now().Truncate(time.Second),
	}

	require.NoError(t, store.Create(ctx, rec))
	return rec
}

// CreatePendingWebPayment inserts a redirect payment record (card or
// MB WAY) in the PENDING state and returns it.
func CreatePendingWebPayment(t *testing.T, ctx context.Context, store application.RecordStore, transactionID int64, method domain.Method, amountCents int64) *domain.PaymentRecord {
	rec := &domain.PaymentRecord{
		OrderID:       "order-" + uuid.New().String(),
		TransactionID: transactionID,
		Method:        method,
		AmountCents:   amountCents,
		State:         domain.StatePending,
		Token:         "tok-" + uuid.New().String(),
		RedirectURL:   "https://paypay.example/redirect/" + uuid.New().String(),
		CreatedAt:     time.Now().Truncate(time.Second),
	}

	require.NoError(t, store.Create(ctx, rec))
	return rec
}
