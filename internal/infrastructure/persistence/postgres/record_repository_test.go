package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/application/services/testhelpers"
	"github.com/lusopay/paypay-gateway/internal/domain"
	"github.com/lusopay/paypay-gateway/internal/infrastructure/persistence/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	td := testhelpers.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := postgres.NewRecordRepository(td.DB)
	ctx := context.Background()

	t.Run("CreateAndFindReference", func(t *testing.T) {
		td.CleanTables(t)
		rec := testhelpers.CreatePendingReference(t, ctx, repo, 1001, 1999)

		found, err := repo.FindByTransactionID(ctx, 1001)
		require.NoError(t, err)
		assert.Equal(t, rec.OrderID, found.OrderID)
		assert.Equal(t, domain.MethodMultibanco, found.Method)
		assert.Equal(t, int64(1999), found.AmountCents)
		assert.Equal(t, domain.StatePending, found.State)
		assert.Equal(t, "123456789", found.Reference)
		assert.Equal(t, "11249", found.ATMEntity)
	})

	t.Run("CreateAndFindWebPayment", func(t *testing.T) {
		td.CleanTables(t)
		rec := testhelpers.CreatePendingWebPayment(t, ctx, repo, 2001, domain.MethodMBWay, 500)

		found, err := repo.FindByTransactionID(ctx, 2001)
		require.NoError(t, err)
		assert.Equal(t, rec.OrderID, found.OrderID)
		assert.Equal(t, domain.MethodMBWay, found.Method)
		assert.Equal(t, rec.Token, found.Token)
		assert.Equal(t, rec.RedirectURL, found.RedirectURL)
	})

	t.Run("FindUnknownTransaction", func(t *testing.T) {
		td.CleanTables(t)

		_, err := repo.FindByTransactionID(ctx, 99999)
		require.Error(t, err)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeNotFound))
	})

	t.Run("ReferenceTableWinsOnDuplicateID", func(t *testing.T) {
		td.CleanTables(t)
		ref := testhelpers.CreatePendingReference(t, ctx, repo, 3001, 1000)
		testhelpers.CreatePendingWebPayment(t, ctx, repo, 3001, domain.MethodCreditCard, 2000)

		found, err := repo.FindByTransactionID(ctx, 3001)
		require.NoError(t, err)
		assert.Equal(t, ref.OrderID, found.OrderID)
		assert.Equal(t, domain.MethodMultibanco, found.Method)
	})

	t.Run("UpdateStateIfPending", func(t *testing.T) {
		td.CleanTables(t)
		testhelpers.CreatePendingReference(t, ctx, repo, 4001, 1000)

		applied, err := repo.UpdateStateIfPending(ctx, 4001, domain.StatePaid)
		require.NoError(t, err)
		assert.True(t, applied)

		// Second transition loses: the record is no longer pending.
		applied, err = repo.UpdateStateIfPending(ctx, 4001, domain.StateCancelled)
		require.NoError(t, err)
		assert.False(t, applied)

		found, err := repo.FindByTransactionID(ctx, 4001)
		require.NoError(t, err)
		assert.Equal(t, domain.StatePaid, found.State)
	})

	t.Run("UpdateStateByOrderCoversBothTables", func(t *testing.T) {
		td.CleanTables(t)
		ref := testhelpers.CreatePendingReference(t, ctx, repo, 5001, 1000)
		web := testhelpers.CreatePendingWebPayment(t, ctx, repo, 5002, domain.MethodCreditCard, 1000)
		web.OrderID = ref.OrderID
		_, err := td.DB.Pool.Exec(ctx, "UPDATE paypay_payment SET order_id = $1 WHERE transaction_id = $2", ref.OrderID, web.TransactionID)
		require.NoError(t, err)

		applied, err := repo.UpdateStateByOrderIfPending(ctx, ref.OrderID, domain.StateCancelled)
		require.NoError(t, err)
		assert.True(t, applied)

		for _, txnID := range []int64{5001, 5002} {
			found, err := repo.FindByTransactionID(ctx, txnID)
			require.NoError(t, err)
			assert.Equal(t, domain.StateCancelled, found.State)
		}
	})

	t.Run("SetPaidAt", func(t *testing.T) {
		td.CleanTables(t)
		testhelpers.CreatePendingReference(t, ctx, repo, 6001, 1000)

		paidAt := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)
		require.NoError(t, repo.SetPaidAt(ctx, 6001, paidAt))

		found, err := repo.FindByTransactionID(ctx, 6001)
		require.NoError(t, err)
		require.NotNil(t, found.PaidAt)
		assert.True(t, paidAt.Equal(*found.PaidAt))
	})

	t.Run("ListPendingDeduplicatesByOrder", func(t *testing.T) {
		td.CleanTables(t)
		ref := testhelpers.CreatePendingReference(t, ctx, repo, 7001, 1000)
		web := testhelpers.CreatePendingWebPayment(t, ctx, repo, 7002, domain.MethodMBWay, 1000)
		_, err := td.DB.Pool.Exec(ctx, "UPDATE paypay_payment SET order_id = $1 WHERE transaction_id = $2", ref.OrderID, web.TransactionID)
		require.NoError(t, err)

		settled := testhelpers.CreatePendingReference(t, ctx, repo, 7003, 2000)
		_, err = repo.UpdateStateIfPending(ctx, settled.TransactionID, domain.StatePaid)
		require.NoError(t, err)

		pending, err := repo.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, ref.OrderID, pending[0].OrderID)
	})

	t.Run("CurrentMethodReplacedOnRetry", func(t *testing.T) {
		td.CleanTables(t)
		rec := testhelpers.CreatePendingReference(t, ctx, repo, 9001, 1000)

		require.NoError(t, repo.SetCurrentMethod(ctx, rec.OrderID, domain.MethodMultibanco))
		require.NoError(t, repo.SetCurrentMethod(ctx, rec.OrderID, domain.MethodMBWay))

		method, err := repo.CurrentMethod(ctx, rec.OrderID)
		require.NoError(t, err)
		assert.Equal(t, domain.MethodMBWay, method, "one marker per order, latest attempt wins")
	})

	t.Run("CurrentMethodUnknownOrder", func(t *testing.T) {
		td.CleanTables(t)

		method, err := repo.CurrentMethod(ctx, "no-such-order")
		require.NoError(t, err)
		assert.Empty(t, method)
	})

	t.Run("NoteIDRoundTrip", func(t *testing.T) {
		td.CleanTables(t)
		rec := testhelpers.CreatePendingReference(t, ctx, repo, 8001, 1000)

		noteID := int64(42)
		require.NoError(t, repo.SetNoteID(ctx, rec.OrderID, &noteID))

		got, err := repo.FindNoteIDByOrder(ctx, rec.OrderID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, noteID, *got)

		require.NoError(t, repo.SetNoteID(ctx, rec.OrderID, nil))
		got, err = repo.FindNoteIDByOrder(ctx, rec.OrderID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSubscriptionRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	td := testhelpers.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := postgres.NewSubscriptionRepository(td.DB)
	ctx := context.Background()

	sub := &application.WebhookSubscription{
		Hooked:      true,
		Action:      "payment_confirmed",
		CallbackURL: "https://shop.example/paypay/webhook",
		MerchantNIF: "123456789",
		CreatedAt:   time.Now().Truncate(time.Second),
	}
	require.NoError(t, repo.Save(ctx, sub))

	// Saving the same action again replaces the row.
	sub.CallbackURL = "https://shop.example/v2/paypay/webhook"
	require.NoError(t, repo.Save(ctx, sub))

	subs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "payment_confirmed", subs[0].Action)
	assert.Equal(t, "https://shop.example/v2/paypay/webhook", subs[0].CallbackURL)
	assert.True(t, subs[0].Hooked)
}
