package application

import (
	"context"
	"time"

	"github.com/lusopay/paypay-gateway/internal/domain"
)

// RecordStore is the port for payment record persistence. Transaction ids
// are only unique within a method's namespace, so lookups check the
// Multibanco reference table first and fall through to the generic payment
// table before reporting not found.
type RecordStore interface {
	Create(ctx context.Context, rec *domain.PaymentRecord) error
	FindByTransactionID(ctx context.Context, transactionID int64) (*domain.PaymentRecord, error)

	// UpdateStateIfPending transitions the record only if its state is
	// still PENDING. It reports whether the transition was applied; a
	// false return means another channel already won the race.
	UpdateStateIfPending(ctx context.Context, transactionID int64, state domain.PaymentState) (bool, error)

	// UpdateStateByOrderIfPending applies the same conditional transition
	// to every pending record of an order, across both tables. Used by the
	// customer cancel callback, which bypasses the engine's batch path.
	UpdateStateByOrderIfPending(ctx context.Context, orderID string, state domain.PaymentState) (bool, error)

	SetPaidAt(ctx context.Context, transactionID int64, paidAt time.Time) error

	// ListPending returns all PENDING records across both tables, one
	// entry per order even when an order has attempts in both.
	ListPending(ctx context.Context) ([]domain.PendingCheck, error)

	SetNoteID(ctx context.Context, orderID string, noteID *int64) error
	FindNoteIDByOrder(ctx context.Context, orderID string) (*int64, error)

	// SetCurrentMethod marks which payment method is current for the
	// order, replacing any previous marker; an order has a single current
	// method even when it carries attempts in both tables.
	SetCurrentMethod(ctx context.Context, orderID string, method domain.Method) error
	CurrentMethod(ctx context.Context, orderID string) (domain.Method, error)
}

// SubscriptionStore persists webhook subscription state.
type SubscriptionStore interface {
	Save(ctx context.Context, sub *WebhookSubscription) error
	List(ctx context.Context) ([]WebhookSubscription, error)
}

type WebhookSubscription struct {
	Hooked      bool
	Action      string
	CallbackURL string
	MerchantNIF string
	CreatedAt   time.Time
}

// ProcessorClient is the port for the external PayPay webservice.
// Calls are synchronous blocking I/O; failures propagate to the initiating
// request and are never retried here - webhook redelivery and the poll
// sweep are the retry channels.
type ProcessorClient interface {
	ValidatePaymentReference(ctx context.Context, req ReferenceDetailsRequest) (*PaymentOptionsResponse, error)
	CreatePaymentReference(ctx context.Context, req ReferenceDetailsRequest) (*ReferenceResponse, error)
	CreateWebPayment(ctx context.Context, req WebPaymentRequest) (*WebPaymentResponse, error)
	SubscribeWebhook(ctx context.Context, req WebhookSubscriptionRequest) (*WebhookSubscriptionResponse, error)
	CheckEntityPayments(ctx context.Context, queries []StatusQuery) ([]PaymentStatus, error)
}

type ReferenceDetailsRequest struct {
	AmountCents int64
	OrderRef    string
	Method      domain.Method
}

type PaymentOptionsResponse struct {
	Options []PaymentOption
}

type PaymentOption struct {
	Code        string
	Name        string
	Description string
	IconURL     string
}

type ReferenceResponse struct {
	TransactionID int64
	Reference     string
	ATMEntity     string
	AmountCents   int64
	ValidEndDate  time.Time
}

type WebPaymentRequest struct {
	AmountCents int64
	OrderRef    string
	Method      domain.Method
	Buyer       BuyerInfo
	Billing     *Address
	Shipping    *Address
	ReturnURL   string
	CancelURL   string
}

type BuyerInfo struct {
	FirstName  string
	LastName   string
	Email      string
	CustomerID string
}

type Address struct {
	Country   string
	State     string
	StateName string
	City      string
	Street1   string
	Street2   string
	PostCode  string
}

type WebPaymentResponse struct {
	TransactionID int64
	URL           string
	Token         string
}

type WebhookSubscriptionRequest struct {
	Action      string
	CallbackURL string
}

type WebhookSubscriptionResponse struct {
	Accepted bool
	Message  string
}

type StatusQuery struct {
	TransactionID int64
}

// PaymentStatus is one entry of a batched status inquiry result.
// Code carries the processor's result code; "0062" means the transaction
// is unknown on the processor side.
type PaymentStatus struct {
	TransactionID int64
	State         int
	Cancelled     int
	AmountCents   int64
	Date          string
	Code          string
}

// CodeNotFound is the processor result code for an unknown transaction.
const CodeNotFound = "0062"

// OrderGateway is the port to the hosting shop's order API. The shop owns
// orders, notes and customer-facing status pages; the core only drives the
// transitions listed here.
type OrderGateway interface {
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	Hold(ctx context.Context, orderID, note string) error
	Complete(ctx context.Context, orderID string, transactionID int64, paidAt time.Time) error

	// Cancel moves the order to cancelled unless it is already paid.
	// It reports whether the cancellation was applied.
	Cancel(ctx context.Context, orderID, note string) (bool, error)

	AddNote(ctx context.Context, orderID, note string) (int64, error)
	DeleteNote(ctx context.Context, orderID string, noteID int64) error
	GetNote(ctx context.Context, orderID string, noteID int64) (string, error)
}
