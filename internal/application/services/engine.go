package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/domain"
)

// processorDateLayout is the timestamp format of paymentDate fields in
// webhook payloads and batch status responses.
const processorDateLayout = "2006-01-02 15:04:05"

// Outcome is the engine's decision for a single notification. Callers render
// it into HTTP statuses or counters; the engine itself never retries and
// never renders anything.
type Outcome struct {
	TransactionID int64
	OrderID       string
	Previous      domain.PaymentState
	Applied       domain.PaymentState

	// NoOp is set when the record was already terminal or another channel
	// won the conditional update. Tolerated, not an error.
	NoOp bool
}

// Engine applies the payment state machine. All mutation goes through the
// store's conditional update, so two channels racing on the same transaction
// produce exactly one effective transition.
type Engine struct {
	store  application.RecordStore
	orders *OrderAdapter
	loc    *time.Location
	logger *slog.Logger
}

func NewEngine(store application.RecordStore, orders *OrderAdapter, loc *time.Location, logger *slog.Logger) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		store:  store,
		orders: orders,
		loc:    loc,
		logger: logger,
	}
}

// Confirm handles an authoritative "paid" report for a transaction.
//
// The order's total must equal the reported amount in integer-cents form;
// any mismatch forces INVALID regardless of the reported paid flag. The paid
// timestamp is the processor's reported date normalized to the processor's
// reference timezone.
func (e *Engine) Confirm(ctx context.Context, transactionID, reportedAmountCents int64, reportedDate string) (*Outcome, error) {
	rec, err := e.store.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if rec.State.Terminal() {
		e.logger.Warn("payment already processed",
			"transaction_id", transactionID, "order_id", rec.OrderID, "state", rec.State.String())
		return e.noOp(rec), nil
	}

	order, err := e.orders.Get(ctx, rec.OrderID)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	orderCents, err := order.TotalCents()
	if err != nil {
		return nil, err
	}

	if orderCents != reportedAmountCents {
		out := e.applyInvalid(ctx, rec)
		e.logger.Error("payment amount mismatch, marking invalid",
			"transaction_id", transactionID, "order_id", rec.OrderID,
			"order_amount", orderCents, "reported_amount", reportedAmountCents)
		return out, domain.NewAmountMismatchError(transactionID, orderCents, reportedAmountCents)
	}

	applied, err := e.store.UpdateStateIfPending(ctx, transactionID, domain.StatePaid)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	if !applied {
		e.logger.Warn("lost confirmation race, state already settled", "transaction_id", transactionID)
		return e.noOp(rec), nil
	}

	paidAt := e.normalizePaidDate(reportedDate)
	if err := e.store.SetPaidAt(ctx, transactionID, paidAt); err != nil {
		e.logger.Error("failed to persist paid timestamp", "transaction_id", transactionID, "error", err)
	}

	out := &Outcome{
		TransactionID: transactionID,
		OrderID:       rec.OrderID,
		Previous:      rec.State,
		Applied:       domain.StatePaid,
	}

	if err := e.orders.ConfirmPaid(ctx, rec.OrderID, transactionID, paidAt); err != nil {
		return out, application.NewInternalError(err)
	}
	return out, nil
}

// Cancel handles a cancelled or expired report. The note type distinguishes
// the two for the customer-visible annotation.
func (e *Engine) Cancel(ctx context.Context, transactionID int64, nt domain.NoteType) (*Outcome, error) {
	rec, err := e.store.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if rec.State.Terminal() {
		e.logger.Warn("payment already processed",
			"transaction_id", transactionID, "order_id", rec.OrderID, "state", rec.State.String())
		return e.noOp(rec), nil
	}

	order, err := e.orders.Get(ctx, rec.OrderID)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	if order.Paid {
		e.logger.Warn("order fully paid, ignoring cancellation", "transaction_id", transactionID, "order_id", rec.OrderID)
		return e.noOp(rec), nil
	}

	applied, err := e.store.UpdateStateIfPending(ctx, transactionID, domain.StateCancelled)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	if !applied {
		e.logger.Warn("lost cancellation race, state already settled", "transaction_id", transactionID)
		return e.noOp(rec), nil
	}

	out := &Outcome{
		TransactionID: transactionID,
		OrderID:       rec.OrderID,
		Previous:      rec.State,
		Applied:       domain.StateCancelled,
	}

	if _, err := e.orders.CancelWithNote(ctx, rec.OrderID, nt); err != nil {
		return out, application.NewInternalError(err)
	}
	return out, nil
}

// MarkInvalid flags a pending transaction the processor does not recognize.
// No customer note is produced; the condition is operator-facing.
func (e *Engine) MarkInvalid(ctx context.Context, transactionID int64) (*Outcome, error) {
	rec, err := e.store.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if rec.State.Terminal() {
		e.logger.Warn("payment already processed",
			"transaction_id", transactionID, "order_id", rec.OrderID, "state", rec.State.String())
		return e.noOp(rec), nil
	}

	return e.applyInvalid(ctx, rec), nil
}

func (e *Engine) applyInvalid(ctx context.Context, rec *domain.PaymentRecord) *Outcome {
	applied, err := e.store.UpdateStateIfPending(ctx, rec.TransactionID, domain.StateInvalid)
	if err != nil {
		e.logger.Error("failed to mark payment invalid", "transaction_id", rec.TransactionID, "error", err)
		return e.noOp(rec)
	}
	if !applied {
		return e.noOp(rec)
	}
	return &Outcome{
		TransactionID: rec.TransactionID,
		OrderID:       rec.OrderID,
		Previous:      rec.State,
		Applied:       domain.StateInvalid,
	}
}

func (e *Engine) noOp(rec *domain.PaymentRecord) *Outcome {
	return &Outcome{
		TransactionID: rec.TransactionID,
		OrderID:       rec.OrderID,
		Previous:      rec.State,
		Applied:       rec.State,
		NoOp:          true,
	}
}

// normalizePaidDate parses the processor's reported date in the reference
// timezone. An unparseable date falls back to the current time; the payment
// is confirmed either way.
func (e *Engine) normalizePaidDate(reportedDate string) time.Time {
	t, err := time.ParseInLocation(processorDateLayout, reportedDate, e.loc)
	if err != nil {
		e.logger.Warn("unparseable payment date, using current time", "date", reportedDate, "error", err)
		return time.Now().In(e.loc)
	}
	return t
}
