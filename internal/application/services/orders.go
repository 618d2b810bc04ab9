package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/domain"
)

// OrderAdapter translates reconciliation outcomes into order lifecycle
// transitions and customer-visible notes. It is the only component allowed
// to talk to the shop's order API.
type OrderAdapter struct {
	gateway application.OrderGateway
	store   application.RecordStore
	logger  *slog.Logger
}

func NewOrderAdapter(gateway application.OrderGateway, store application.RecordStore, logger *slog.Logger) *OrderAdapter {
	return &OrderAdapter{
		gateway: gateway,
		store:   store,
		logger:  logger,
	}
}

func (a *OrderAdapter) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return a.gateway.Get(ctx, orderID)
}

// Hold moves a freshly initiated order to on-hold awaiting payment.
func (a *OrderAdapter) Hold(ctx context.Context, orderID string) error {
	return a.gateway.Hold(ctx, orderID, "Awaiting payment")
}

// ConfirmPaid marks the order paid and replaces the pending-payment note
// with the thank-you note.
func (a *OrderAdapter) ConfirmPaid(ctx context.Context, orderID string, transactionID int64, paidAt time.Time) error {
	if err := a.gateway.Complete(ctx, orderID, transactionID, paidAt); err != nil {
		return fmt.Errorf("complete order %s: %w", orderID, err)
	}
	return a.SupersedeNote(ctx, orderID, domain.NotePaid.Message())
}

// CancelWithNote cancels the order unless it is already paid; a paid order
// is never un-paid. It reports whether the cancellation was applied.
func (a *OrderAdapter) CancelWithNote(ctx context.Context, orderID string, nt domain.NoteType) (bool, error) {
	applied, err := a.gateway.Cancel(ctx, orderID, nt.Message())
	if err != nil {
		return false, fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	if !applied {
		a.logger.Warn("order already paid, cancellation skipped", "order_id", orderID)
		return false, nil
	}
	if err := a.SupersedeNote(ctx, orderID, nt.Message()); err != nil {
		return true, err
	}
	return true, nil
}

// SupersedeNote deletes the order's previous gateway note, if any, and
// replaces it with text. The note id back-reference on the payment record
// is updated to the new note.
func (a *OrderAdapter) SupersedeNote(ctx context.Context, orderID, text string) error {
	prev, err := a.store.FindNoteIDByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("find note for order %s: %w", orderID, err)
	}
	if prev != nil {
		if err := a.gateway.DeleteNote(ctx, orderID, *prev); err != nil {
			a.logger.Warn("failed to delete superseded note", "order_id", orderID, "note_id", *prev, "error", err)
		}
	}

	noteID, err := a.gateway.AddNote(ctx, orderID, text)
	if err != nil {
		return fmt.Errorf("add note for order %s: %w", orderID, err)
	}
	return a.store.SetNoteID(ctx, orderID, &noteID)
}

// AttachNote adds a note without deleting a predecessor. Used at checkout
// initiation, where no gateway note exists yet.
func (a *OrderAdapter) AttachNote(ctx context.Context, orderID, text string) error {
	noteID, err := a.gateway.AddNote(ctx, orderID, text)
	if err != nil {
		return fmt.Errorf("add note for order %s: %w", orderID, err)
	}
	return a.store.SetNoteID(ctx, orderID, &noteID)
}

// CurrentNote returns the order's current gateway note for display surfaces.
// Read-only; returns empty when the order has no gateway note.
func (a *OrderAdapter) CurrentNote(ctx context.Context, orderID string) (string, error) {
	noteID, err := a.store.FindNoteIDByOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if noteID == nil {
		return "", nil
	}
	return a.gateway.GetNote(ctx, orderID, *noteID)
}
