package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/lusopay/paypay-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(store *MockRecordStore, gw *MockOrderGateway) *WebhookDispatcher {
	return NewWebhookDispatcher(newTestEngine(store, gw, nil), testLogger())
}

func TestWebhookDispatcher_ConfirmedBatch(t *testing.T) {
	store := NewMockRecordStore()
	gw := NewMockOrderGateway()
	d := newTestDispatcher(store, gw)
	seedPending(store, gw, 1, "order-1", "10.00")
	seedPending(store, gw, 2, "order-2", "20.00")

	status := d.Handle(context.Background(), ActionPaymentConfirmed, []WebhookPayment{
		{PaymentID: 1, PaymentState: 1, PaymentAmount: 1000, PaymentDate: "2025-03-01 09:00:00"},
		{PaymentID: 2, PaymentState: 1, PaymentAmount: 2000, PaymentDate: "2025-03-01 09:05:00"},
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.StatePaid, store.State(1))
	assert.Equal(t, domain.StatePaid, store.State(2))
}

func TestWebhookDispatcher_WorstStatusWins(t *testing.T) {
	store := NewMockRecordStore()
	gw := NewMockOrderGateway()
	d := newTestDispatcher(store, gw)
	seedPending(store, gw, 1, "order-1", "10.00")
	seedPending(store, gw, 2, "order-2", "20.00")

	// Payment 999 has no record: its 400 must surface for the whole batch
	// even though the other two succeed.
	status := d.Handle(context.Background(), ActionPaymentConfirmed, []WebhookPayment{
		{PaymentID: 1, PaymentState: 1, PaymentAmount: 1000, PaymentDate: "2025-03-01 09:00:00"},
		{PaymentID: 999, PaymentState: 1, PaymentAmount: 500, PaymentDate: "2025-03-01 09:00:00"},
		{PaymentID: 2, PaymentState: 1, PaymentAmount: 2000, PaymentDate: "2025-03-01 09:05:00"},
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, domain.StatePaid, store.State(1), "siblings still processed")
	assert.Equal(t, domain.StatePaid, store.State(2))
}

func TestWebhookDispatcher_UnknownActionRejectsBatch(t *testing.T) {
	store := NewMockRecordStore()
	gw := NewMockOrderGateway()
	d := newTestDispatcher(store, gw)
	seedPending(store, gw, 1, "order-1", "10.00")

	status := d.Handle(context.Background(), "payment_teleported", []WebhookPayment{
		{PaymentID: 1, PaymentState: 1, PaymentAmount: 1000},
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, domain.StatePending, store.State(1), "no partial processing on protocol mismatch")
}

func TestWebhookDispatcher_EmptyPaymentList(t *testing.T) {
	d := newTestDispatcher(NewMockRecordStore(), NewMockOrderGateway())

	status := d.Handle(context.Background(), ActionPaymentConfirmed, nil)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWebhookDispatcher_ExpiredCancelsWithExpiryNote(t *testing.T) {
	store := NewMockRecordStore()
	gw := NewMockOrderGateway()
	d := newTestDispatcher(store, gw)
	seedPending(store, gw, 7, "order-7", "15.50")

	status := d.Handle(context.Background(), ActionPaymentExpired, []WebhookPayment{
		{PaymentID: 7, PaymentCancelled: 1},
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.StateCancelled, store.State(7))
	require.NotEmpty(t, gw.AddedNotes)
	assert.Equal(t, domain.NoteExpired.Message(), gw.AddedNotes[len(gw.AddedNotes)-1])
}

func TestWebhookDispatcher_TerminalRedeliveryIsTolerated(t *testing.T) {
	store := NewMockRecordStore()
	gw := NewMockOrderGateway()
	d := newTestDispatcher(store, gw)
	seedPending(store, gw, 8, "order-8", "30.00")

	first := d.Handle(context.Background(), ActionPaymentCancelled, []WebhookPayment{{PaymentID: 8, PaymentCancelled: 1}})
	require.Equal(t, http.StatusOK, first)
	require.Equal(t, domain.StateCancelled, store.State(8))

	// Late confirmation for the cancelled record: 200, state untouched.
	second := d.Handle(context.Background(), ActionPaymentConfirmed, []WebhookPayment{
		{PaymentID: 8, PaymentState: 1, PaymentAmount: 3000, PaymentDate: "2025-03-01 12:00:00"},
	})

	assert.Equal(t, http.StatusOK, second)
	assert.Equal(t, domain.StateCancelled, store.State(8))
}
