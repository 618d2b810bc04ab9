package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/domain"
)

// PaymentMethodHandler is one payment method's capability set: start a
// processor transaction for an order, and describe an existing payment for
// display. Handlers are registered statically per method enum; there is no
// string-driven instantiation.
type PaymentMethodHandler interface {
	Initiate(ctx context.Context, order *domain.Order) (*domain.PaymentRecord, *domain.RedirectInfo, error)
	PaymentLayout(rec *domain.PaymentRecord) domain.DisplayModel
}

// CheckoutService drives checkout initiation: it creates the PENDING payment
// record, stamps the order on-hold with the payment instructions note and
// returns where to send the customer next.
type CheckoutService struct {
	store     application.RecordStore
	orders    *OrderAdapter
	processor application.ProcessorClient
	handlers  map[domain.Method]PaymentMethodHandler
	logger    *slog.Logger
}

func NewCheckoutService(
	store application.RecordStore,
	orders *OrderAdapter,
	processor application.ProcessorClient,
	publicBaseURL string,
	logger *slog.Logger,
) *CheckoutService {
	handlers := map[domain.Method]PaymentMethodHandler{
		domain.MethodMultibanco: &MultibancoHandler{processor: processor},
		domain.MethodCreditCard: &WebPaymentHandler{processor: processor, method: domain.MethodCreditCard, publicBaseURL: publicBaseURL},
		domain.MethodMBWay:      &WebPaymentHandler{processor: processor, method: domain.MethodMBWay, publicBaseURL: publicBaseURL},
	}
	return &CheckoutService{
		store:     store,
		orders:    orders,
		processor: processor,
		handlers:  handlers,
		logger:    logger,
	}
}

// Initiate starts a processor transaction for the order with the given
// method and records the pending payment.
func (s *CheckoutService) Initiate(ctx context.Context, orderID string, method domain.Method) (*domain.RedirectInfo, error) {
	handler, ok := s.handlers[method]
	if !ok {
		return nil, application.NewInvalidInputError(fmt.Errorf("unsupported payment method %q", method))
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	rec, redirect, err := handler.Initiate(ctx, order)
	if err != nil {
		s.logger.Error("checkout initiation failed", "order_id", orderID, "method", method, "error", err)
		return nil, err
	}

	if err := s.store.Create(ctx, rec); err != nil {
		return nil, application.NewInternalError(err)
	}

	// Mark the method as current for the order; a retry through another
	// method replaces the marker.
	if err := s.store.SetCurrentMethod(ctx, orderID, method); err != nil {
		return nil, application.NewInternalError(err)
	}

	if err := s.orders.Hold(ctx, orderID); err != nil {
		return nil, application.NewInternalError(err)
	}

	layout := handler.PaymentLayout(rec)
	if err := s.orders.AttachNote(ctx, orderID, layoutNoteText(layout)); err != nil {
		s.logger.Warn("failed to attach payment note", "order_id", orderID, "error", err)
	}

	s.logger.Info("payment initiated",
		"order_id", orderID, "method", method, "transaction_id", rec.TransactionID)
	return redirect, nil
}

// Layout returns the display model for an order's payment, for the
// confirmation page and order e-mails.
func (s *CheckoutService) Layout(ctx context.Context, transactionID int64) (*domain.DisplayModel, error) {
	rec, err := s.store.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	handler, ok := s.handlers[rec.Method]
	if !ok {
		return nil, application.NewInternalError(fmt.Errorf("no handler registered for method %q", rec.Method))
	}
	layout := handler.PaymentLayout(rec)
	return &layout, nil
}

// AvailableMethods asks the processor which payment options apply to the
// amount, as shown on the checkout page.
func (s *CheckoutService) AvailableMethods(ctx context.Context, amountCents int64) ([]application.PaymentOption, error) {
	resp, err := s.processor.ValidatePaymentReference(ctx, application.ReferenceDetailsRequest{
		AmountCents: amountCents,
	})
	if err != nil {
		return nil, application.NewProcessorUnreachableError(err)
	}
	return resp.Options, nil
}

// OrderNote describes the order's current gateway note and payment method,
// as shown on the order status page and in order e-mails.
type OrderNote struct {
	Note   string        `json:"note"`
	Method domain.Method `json:"method,omitempty"`
}

// Note returns the order's current gateway note, paired with the method
// the customer last initiated through.
func (s *CheckoutService) Note(ctx context.Context, orderID string) (*OrderNote, error) {
	note, err := s.orders.CurrentNote(ctx, orderID)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	method, err := s.store.CurrentMethod(ctx, orderID)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	return &OrderNote{Note: note, Method: method}, nil
}

// CancelByCustomer handles the cancel/return callback: a direct cancellation
// outside the engine's batch path, followed by a redirect to the order's
// status page.
func (s *CheckoutService) CancelByCustomer(ctx context.Context, orderID string) (string, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return "", application.NewInternalError(err)
	}

	if _, err := s.store.UpdateStateByOrderIfPending(ctx, orderID, domain.StateCancelled); err != nil {
		return "", application.NewInternalError(err)
	}
	if _, err := s.orders.CancelWithNote(ctx, orderID, domain.NoteCustomerCancelled); err != nil {
		return "", application.NewInternalError(err)
	}

	s.logger.Info("payment cancelled by customer", "order_id", orderID)
	return order.ViewURL, nil
}

// MultibancoHandler creates ATM references payable at a bank terminal.
type MultibancoHandler struct {
	processor application.ProcessorClient
}

func (h *MultibancoHandler) Initiate(ctx context.Context, order *domain.Order) (*domain.PaymentRecord, *domain.RedirectInfo, error) {
	amount, err := order.TotalCents()
	if err != nil {
		return nil, nil, err
	}

	resp, err := h.processor.CreatePaymentReference(ctx, application.ReferenceDetailsRequest{
		AmountCents: amount,
		OrderRef:    order.Number,
		Method:      domain.MethodMultibanco,
	})
	if err != nil {
		return nil, nil, application.NewProcessorUnreachableError(err)
	}

	expires := resp.ValidEndDate
	rec := &domain.PaymentRecord{
		OrderID:       order.ID,
		TransactionID: resp.TransactionID,
		Method:        domain.MethodMultibanco,
		AmountCents:   resp.AmountCents,
		State:         domain.StatePending,
		Reference:     resp.Reference,
		ATMEntity:     resp.ATMEntity,
		ExpiresAt:     &expires,
		CreatedAt:     time.Now(),
	}

	// The customer pays at an ATM; they go straight back to the order page.
	redirect := &domain.RedirectInfo{Result: "success", RedirectURL: order.ViewURL}
	return rec, redirect, nil
}

func (h *MultibancoHandler) PaymentLayout(rec *domain.PaymentRecord) domain.DisplayModel {
	return domain.DisplayModel{
		Method:    domain.MethodMultibanco,
		Entity:    rec.ATMEntity,
		Reference: domain.ChunkReference(rec.Reference),
		Amount:    domain.FormatAmount(rec.AmountCents),
		Expiry:    rec.ExpiresAt,
	}
}

// WebPaymentHandler redirects the customer to a processor-hosted payment
// page, for credit card and MB WAY.
type WebPaymentHandler struct {
	processor     application.ProcessorClient
	method        domain.Method
	publicBaseURL string
}

func (h *WebPaymentHandler) Initiate(ctx context.Context, order *domain.Order) (*domain.PaymentRecord, *domain.RedirectInfo, error) {
	amount, err := order.TotalCents()
	if err != nil {
		return nil, nil, err
	}

	resp, err := h.processor.CreateWebPayment(ctx, application.WebPaymentRequest{
		AmountCents: amount,
		OrderRef:    order.Number,
		Method:      h.method,
		ReturnURL:   order.ViewURL,
		CancelURL:   fmt.Sprintf("%s/paypay/cancel?order_id=%s", h.publicBaseURL, order.ID),
	})
	if err != nil {
		return nil, nil, application.NewProcessorUnreachableError(err)
	}

	rec := &domain.PaymentRecord{
		OrderID:       order.ID,
		TransactionID: resp.TransactionID,
		Method:        h.method,
		AmountCents:   amount,
		State:         domain.StatePending,
		Token:         resp.Token,
		RedirectURL:   resp.URL,
		CreatedAt:     time.Now(),
	}

	redirect := &domain.RedirectInfo{Result: "success", RedirectURL: resp.URL}
	return rec, redirect, nil
}

func (h *WebPaymentHandler) PaymentLayout(rec *domain.PaymentRecord) domain.DisplayModel {
	return domain.DisplayModel{
		Method:     rec.Method,
		Amount:     domain.FormatAmount(rec.AmountCents),
		PaymentURL: rec.RedirectURL,
	}
}

func layoutNoteText(l domain.DisplayModel) string {
	if l.Method == domain.MethodMultibanco {
		text := fmt.Sprintf("Pay at any ATM. Entity: %s, Reference: %s, Amount: %s", l.Entity, l.Reference, l.Amount)
		if l.Expiry != nil {
			text += fmt.Sprintf(", valid until %s", l.Expiry.Format("2006-01-02 15:04"))
		}
		return text
	}
	return fmt.Sprintf("Complete your payment of %s at %s", l.Amount, l.PaymentURL)
}
