package services

import (
	"context"
	"sync"
	"time"

	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/domain"
)

// MockRecordStore
type MockRecordStore struct {
	mu      sync.RWMutex
	records map[int64]*domain.PaymentRecord
	notes   map[string]*int64
	methods map[string]domain.Method

	CreateFn               func(ctx context.Context, rec *domain.PaymentRecord) error
	FindByTransactionIDFn  func(ctx context.Context, transactionID int64) (*domain.PaymentRecord, error)
	UpdateStateIfPendingFn func(ctx context.Context, transactionID int64, state domain.PaymentState) (bool, error)
	ListPendingFn          func(ctx context.Context) ([]domain.PendingCheck, error)
}

func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{
		records: make(map[int64]*domain.PaymentRecord),
		notes:   make(map[string]*int64),
		methods: make(map[string]domain.Method),
	}
}

func (m *MockRecordStore) Create(ctx context.Context, rec *domain.PaymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateFn != nil {
		return m.CreateFn(ctx, rec)
	}
	cp := *rec
	m.records[rec.TransactionID] = &cp
	return nil
}

func (m *MockRecordStore) FindByTransactionID(ctx context.Context, transactionID int64) (*domain.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindByTransactionIDFn != nil {
		return m.FindByTransactionIDFn(ctx, transactionID)
	}
	if rec, ok := m.records[transactionID]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, domain.NewNotFoundError(transactionID)
}

func (m *MockRecordStore) UpdateStateIfPending(ctx context.Context, transactionID int64, state domain.PaymentState) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateStateIfPendingFn != nil {
		return m.UpdateStateIfPendingFn(ctx, transactionID, state)
	}
	rec, ok := m.records[transactionID]
	if !ok || rec.State != domain.StatePending {
		return false, nil
	}
	rec.State = state
	return true, nil
}

func (m *MockRecordStore) UpdateStateByOrderIfPending(ctx context.Context, orderID string, state domain.PaymentState) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	applied := false
	for _, rec := range m.records {
		if rec.OrderID == orderID && rec.State == domain.StatePending {
			rec.State = state
			applied = true
		}
	}
	return applied, nil
}

func (m *MockRecordStore) SetPaidAt(ctx context.Context, transactionID int64, paidAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[transactionID]; ok {
		rec.PaidAt = &paidAt
	}
	return nil
}

func (m *MockRecordStore) ListPending(ctx context.Context) ([]domain.PendingCheck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListPendingFn != nil {
		return m.ListPendingFn(ctx)
	}
	seen := make(map[string]bool)
	var pending []domain.PendingCheck
	for _, rec := range m.records {
		if rec.State != domain.StatePending || seen[rec.OrderID] {
			continue
		}
		seen[rec.OrderID] = true
		pending = append(pending, domain.PendingCheck{
			TransactionID: rec.TransactionID,
			OrderID:       rec.OrderID,
			Method:        rec.Method,
		})
	}
	return pending, nil
}

func (m *MockRecordStore) SetNoteID(ctx context.Context, orderID string, noteID *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[orderID] = noteID
	for _, rec := range m.records {
		if rec.OrderID == orderID {
			rec.NoteID = noteID
		}
	}
	return nil
}

func (m *MockRecordStore) FindNoteIDByOrder(ctx context.Context, orderID string) (*int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.notes[orderID], nil
}

func (m *MockRecordStore) SetCurrentMethod(ctx context.Context, orderID string, method domain.Method) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methods[orderID] = method
	return nil
}

func (m *MockRecordStore) CurrentMethod(ctx context.Context, orderID string) (domain.Method, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.methods[orderID], nil
}

// State returns the current state of a seeded record, for assertions.
func (m *MockRecordStore) State(transactionID int64) domain.PaymentState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.records[transactionID]; ok {
		return rec.State
	}
	return domain.StateInvalid
}

// MockOrderGateway
type MockOrderGateway struct {
	mu         sync.Mutex
	orders     map[string]*domain.Order
	noteSeq    int64
	notes      map[int64]string
	Completed  []string
	Cancelled  []string
	Held       []string
	AddedNotes []string

	GetFn      func(ctx context.Context, orderID string) (*domain.Order, error)
	CancelFn   func(ctx context.Context, orderID, note string) (bool, error)
	CompleteFn func(ctx context.Context, orderID string, transactionID int64, paidAt time.Time) error
}

func NewMockOrderGateway() *MockOrderGateway {
	return &MockOrderGateway{
		orders: make(map[string]*domain.Order),
		notes:  make(map[int64]string),
	}
}

func (m *MockOrderGateway) Seed(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

func (m *MockOrderGateway) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetFn != nil {
		return m.GetFn(ctx, orderID)
	}
	if o, ok := m.orders[orderID]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domain.NewNotFoundError(0)
}

func (m *MockOrderGateway) Hold(ctx context.Context, orderID, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Held = append(m.Held, orderID)
	return nil
}

func (m *MockOrderGateway) Complete(ctx context.Context, orderID string, transactionID int64, paidAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, orderID, transactionID, paidAt)
	}
	m.Completed = append(m.Completed, orderID)
	if o, ok := m.orders[orderID]; ok {
		o.Paid = true
	}
	return nil
}

func (m *MockOrderGateway) Cancel(ctx context.Context, orderID, note string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CancelFn != nil {
		return m.CancelFn(ctx, orderID, note)
	}
	if o, ok := m.orders[orderID]; ok && o.Paid {
		return false, nil
	}
	m.Cancelled = append(m.Cancelled, orderID)
	return true, nil
}

func (m *MockOrderGateway) AddNote(ctx context.Context, orderID, note string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.noteSeq++
	m.notes[m.noteSeq] = note
	m.AddedNotes = append(m.AddedNotes, note)
	return m.noteSeq, nil
}

func (m *MockOrderGateway) DeleteNote(ctx context.Context, orderID string, noteID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notes, noteID)
	return nil
}

func (m *MockOrderGateway) GetNote(ctx context.Context, orderID string, noteID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notes[noteID], nil
}

// MockProcessorClient
type MockProcessorClient struct {
	mu           sync.Mutex
	BatchQueries [][]application.StatusQuery

	ValidatePaymentReferenceFn func(ctx context.Context, req application.ReferenceDetailsRequest) (*application.PaymentOptionsResponse, error)
	CreatePaymentReferenceFn   func(ctx context.Context, req application.ReferenceDetailsRequest) (*application.ReferenceResponse, error)
	CreateWebPaymentFn         func(ctx context.Context, req application.WebPaymentRequest) (*application.WebPaymentResponse, error)
	SubscribeWebhookFn         func(ctx context.Context, req application.WebhookSubscriptionRequest) (*application.WebhookSubscriptionResponse, error)
	CheckEntityPaymentsFn      func(ctx context.Context, queries []application.StatusQuery) ([]application.PaymentStatus, error)
}

func (m *MockProcessorClient) ValidatePaymentReference(ctx context.Context, req application.ReferenceDetailsRequest) (*application.PaymentOptionsResponse, error) {
	if m.ValidatePaymentReferenceFn != nil {
		return m.ValidatePaymentReferenceFn(ctx, req)
	}
	return &application.PaymentOptionsResponse{
		Options: []application.PaymentOption{{Code: "MULTIBANCO", Name: "Multibanco"}},
	}, nil
}

func (m *MockProcessorClient) CreatePaymentReference(ctx context.Context, req application.ReferenceDetailsRequest) (*application.ReferenceResponse, error) {
	if m.CreatePaymentReferenceFn != nil {
		return m.CreatePaymentReferenceFn(ctx, req)
	}
	return &application.ReferenceResponse{
		TransactionID: 789001,
		Reference:     "123456789",
		ATMEntity:     "11249",
		AmountCents:   req.AmountCents,
		ValidEndDate:  time.Now().Add(72 * time.Hour),
	}, nil
}

func (m *MockProcessorClient) CreateWebPayment(ctx context.Context, req application.WebPaymentRequest) (*application.WebPaymentResponse, error) {
	if m.CreateWebPaymentFn != nil {
		return m.CreateWebPaymentFn(ctx, req)
	}
	return &application.WebPaymentResponse{
		TransactionID: 789002,
		URL:           "https://pay.example.test/redirect/789002",
		Token:         "tok-789002",
	}, nil
}

func (m *MockProcessorClient) SubscribeWebhook(ctx context.Context, req application.WebhookSubscriptionRequest) (*application.WebhookSubscriptionResponse, error) {
	if m.SubscribeWebhookFn != nil {
		return m.SubscribeWebhookFn(ctx, req)
	}
	return &application.WebhookSubscriptionResponse{Accepted: true}, nil
}

func (m *MockProcessorClient) CheckEntityPayments(ctx context.Context, queries []application.StatusQuery) ([]application.PaymentStatus, error) {
	m.mu.Lock()
	m.BatchQueries = append(m.BatchQueries, queries)
	m.mu.Unlock()
	if m.CheckEntityPaymentsFn != nil {
		return m.CheckEntityPaymentsFn(ctx, queries)
	}
	return nil, nil
}

// MockSubscriptionStore
type MockSubscriptionStore struct {
	mu   sync.Mutex
	Subs []application.WebhookSubscription

	SaveFn func(ctx context.Context, sub *application.WebhookSubscription) error
}

func (m *MockSubscriptionStore) Save(ctx context.Context, sub *application.WebhookSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveFn != nil {
		return m.SaveFn(ctx, sub)
	}
	m.Subs = append(m.Subs, *sub)
	return nil
}

func (m *MockSubscriptionStore) List(ctx context.Context) ([]application.WebhookSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]application.WebhookSubscription(nil), m.Subs...), nil
}
