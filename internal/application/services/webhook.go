package services

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lusopay/paypay-gateway/internal/domain"
)

// Webhook actions the processor is subscribed to. Anything else is a
// protocol/version mismatch and fails the whole request.
const (
	ActionPaymentConfirmed = "payment_confirmed"
	ActionPaymentExpired   = "payment_expired"
	ActionPaymentCancelled = "payment_cancelled"
)

// WebhookPayment is one payment entry of an inbound webhook delivery.
type WebhookPayment struct {
	PaymentID        int64  `json:"paymentId"`
	PaymentState     int    `json:"paymentState"`
	PaymentCancelled int    `json:"paymentCancelled"`
	PaymentAmount    int64  `json:"paymentAmount"`
	PaymentDate      string `json:"paymentDate"`
}

// WebhookDispatcher validates inbound notifications, applies each payment
// through the engine and aggregates a single HTTP status for the batch.
type WebhookDispatcher struct {
	engine *Engine
	logger *slog.Logger
}

func NewWebhookDispatcher(engine *Engine, logger *slog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		engine: engine,
		logger: logger,
	}
}

// Handle processes one webhook delivery and returns the HTTP status for the
// whole request: the maximum per-payment status, so any failure in the batch
// surfaces even when siblings succeeded.
func (d *WebhookDispatcher) Handle(ctx context.Context, action string, payments []WebhookPayment) int {
	handler, err := d.handlerFor(action)
	if err != nil {
		d.logger.Error("webhook rejected", "action", action, "error", err)
		return http.StatusBadRequest
	}

	if len(payments) == 0 {
		d.logger.Error("webhook rejected, empty payment list", "action", action)
		return http.StatusBadRequest
	}

	overall := http.StatusOK
	for _, p := range payments {
		status := handler(ctx, p)
		if status > overall {
			overall = status
		}
	}
	return overall
}

type paymentHandler func(ctx context.Context, p WebhookPayment) int

func (d *WebhookDispatcher) handlerFor(action string) (paymentHandler, error) {
	switch action {
	case ActionPaymentConfirmed:
		return d.paymentConfirmed, nil
	case ActionPaymentExpired:
		return func(ctx context.Context, p WebhookPayment) int {
			return d.paymentCancelled(ctx, p, domain.NoteExpired)
		}, nil
	case ActionPaymentCancelled:
		return func(ctx context.Context, p WebhookPayment) int {
			return d.paymentCancelled(ctx, p, domain.NoteCancelled)
		}, nil
	default:
		return nil, domain.NewInvalidActionError(action)
	}
}

func (d *WebhookDispatcher) paymentConfirmed(ctx context.Context, p WebhookPayment) int {
	d.logger.Debug("webhook payment received", "transaction_id", p.PaymentID, "amount", p.PaymentAmount)

	_, err := d.engine.Confirm(ctx, p.PaymentID, p.PaymentAmount, p.PaymentDate)
	return d.statusFor(err, p.PaymentID)
}

func (d *WebhookDispatcher) paymentCancelled(ctx context.Context, p WebhookPayment, nt domain.NoteType) int {
	_, err := d.engine.Cancel(ctx, p.PaymentID, nt)
	return d.statusFor(err, p.PaymentID)
}

func (d *WebhookDispatcher) statusFor(err error, transactionID int64) int {
	switch {
	case err == nil:
		return http.StatusOK
	case domain.IsErrorCode(err, domain.ErrCodeNotFound):
		d.logger.Error("webhook payment order not found", "transaction_id", transactionID)
		return http.StatusBadRequest
	case domain.IsErrorCode(err, domain.ErrCodeAmountMismatch),
		domain.IsErrorCode(err, domain.ErrCodeInvalidAmount):
		return http.StatusBadRequest
	default:
		d.logger.Error("webhook payment processing failed", "transaction_id", transactionID, "error", err)
		return http.StatusInternalServerError
	}
}
