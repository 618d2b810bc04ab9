package worker

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/application/services"
	"github.com/lusopay/paypay-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(store *services.MockRecordStore, gw *services.MockOrderGateway, processor *services.MockProcessorClient) *Reconciler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	orders := services.NewOrderAdapter(gw, store, logger)
	engine := services.NewEngine(store, orders, time.UTC, logger)
	return NewReconciler(store, processor, engine, time.Minute, 100, logger)
}

func seed(store *services.MockRecordStore, gw *services.MockOrderGateway, txnID int64, orderID, total string) {
	cents, _ := domain.ParseAmount(total)
	store.Create(context.Background(), &domain.PaymentRecord{
		OrderID:       orderID,
		TransactionID: txnID,
		Method:        domain.MethodMultibanco,
		AmountCents:   cents,
		State:         domain.StatePending,
		CreatedAt:     time.Now(),
	})
	gw.Seed(&domain.Order{ID: orderID, Number: orderID, TotalAmount: total})
}

func TestReconciler_SweepCountsOutcomes(t *testing.T) {
	store := services.NewMockRecordStore()
	gw := services.NewMockOrderGateway()
	processor := &services.MockProcessorClient{}
	seed(store, gw, 1, "order-1", "10.00") // will be paid
	seed(store, gw, 2, "order-2", "20.00") // will be cancelled
	seed(store, gw, 3, "order-3", "30.00") // still pending

	processor.CheckEntityPaymentsFn = func(ctx context.Context, queries []application.StatusQuery) ([]application.PaymentStatus, error) {
		return []application.PaymentStatus{
			{TransactionID: 1, State: 1, AmountCents: 1000, Date: "2025-03-02 08:00:00"},
			{TransactionID: 2, State: 0, Cancelled: 1},
			{TransactionID: 3, State: 0, Cancelled: 0},
		}, nil
	}

	r := newTestReconciler(store, gw, processor)
	counts := r.ReconcilePending(context.Background())

	assert.Equal(t, Counts{Paid: 1, Cancelled: 1}, counts)
	assert.Equal(t, domain.StatePaid, store.State(1))
	assert.Equal(t, domain.StateCancelled, store.State(2))
	assert.Equal(t, domain.StatePending, store.State(3))
}

func TestReconciler_SingleBatchedInquiry(t *testing.T) {
	store := services.NewMockRecordStore()
	gw := services.NewMockOrderGateway()
	processor := &services.MockProcessorClient{}
	seed(store, gw, 1, "order-1", "10.00")
	seed(store, gw, 2, "order-2", "20.00")
	seed(store, gw, 3, "order-3", "30.00")

	r := newTestReconciler(store, gw, processor)
	r.ReconcilePending(context.Background())

	require.Len(t, processor.BatchQueries, 1, "one inquiry covers all pending transactions")
	assert.Len(t, processor.BatchQueries[0], 3)
}

func TestReconciler_UnknownTransactionMarkedInvalid(t *testing.T) {
	store := services.NewMockRecordStore()
	gw := services.NewMockOrderGateway()
	processor := &services.MockProcessorClient{}
	seed(store, gw, 42, "order-42", "10.00")

	processor.CheckEntityPaymentsFn = func(ctx context.Context, queries []application.StatusQuery) ([]application.PaymentStatus, error) {
		return []application.PaymentStatus{
			{TransactionID: 42, State: 0, Code: application.CodeNotFound},
		}, nil
	}

	r := newTestReconciler(store, gw, processor)
	counts := r.ReconcilePending(context.Background())

	assert.Equal(t, domain.StateInvalid, store.State(42))
	assert.Equal(t, Counts{}, counts, "invalid transactions count in neither bucket")
}

func TestReconciler_AmountMismatchIsIsolated(t *testing.T) {
	store := services.NewMockRecordStore()
	gw := services.NewMockOrderGateway()
	processor := &services.MockProcessorClient{}
	seed(store, gw, 1, "order-1", "10.00")
	seed(store, gw, 2, "order-2", "19.99")

	processor.CheckEntityPaymentsFn = func(ctx context.Context, queries []application.StatusQuery) ([]application.PaymentStatus, error) {
		return []application.PaymentStatus{
			// Overpaid: reported 20.00 against a 19.99 order.
			{TransactionID: 2, State: 1, AmountCents: 2000, Date: "2025-03-02 08:00:00"},
			{TransactionID: 1, State: 1, AmountCents: 1000, Date: "2025-03-02 08:00:00"},
		}, nil
	}

	r := newTestReconciler(store, gw, processor)
	counts := r.ReconcilePending(context.Background())

	assert.Equal(t, domain.StateInvalid, store.State(2))
	assert.Equal(t, domain.StatePaid, store.State(1), "sweep continues past the bad record")
	assert.Equal(t, Counts{Paid: 1}, counts)
}

func TestReconciler_DeduplicatesByOrder(t *testing.T) {
	store := services.NewMockRecordStore()
	gw := services.NewMockOrderGateway()
	processor := &services.MockProcessorClient{}

	// Same order attempted through two methods: one outstanding inquiry.
	seed(store, gw, 10, "order-1", "10.00")
	store.Create(context.Background(), &domain.PaymentRecord{
		OrderID:       "order-1",
		TransactionID: 11,
		Method:        domain.MethodCreditCard,
		AmountCents:   1000,
		State:         domain.StatePending,
	})

	r := newTestReconciler(store, gw, processor)
	r.ReconcilePending(context.Background())

	require.Len(t, processor.BatchQueries, 1)
	assert.Len(t, processor.BatchQueries[0], 1, "one inquiry per order")
}

func TestReconciler_EmptySweepSkipsProcessor(t *testing.T) {
	store := services.NewMockRecordStore()
	gw := services.NewMockOrderGateway()
	processor := &services.MockProcessorClient{}

	r := newTestReconciler(store, gw, processor)
	counts := r.ReconcilePending(context.Background())

	assert.Equal(t, Counts{}, counts)
	assert.Empty(t, processor.BatchQueries)
}
