package postgres

import (
	"time"

	"github.com/lusopay/paypay-gateway/internal/domain"
)

// ReferenceModel is the row shape of paypay_reference, the Multibanco
// reference table. Transaction ids are unique per table, not globally,
// which is why lookups probe this table before paypay_payment.
type ReferenceModel struct {
	OrderID       string
	TransactionID int64
	AmountCents   int64
	State         int
	ATMEntity     string
	Reference     string
	ExpiresAt     *time.Time
	NoteID        *int64
	CreatedAt     time.Time
	PaidAt        *time.Time
}

// WebPaymentModel is the row shape of paypay_payment, shared by the
// card redirect and MB WAY methods.
type WebPaymentModel struct {
	OrderID       string
	TransactionID int64
	Method        string
	AmountCents   int64
	State         int
	Token         string
	RedirectURL   string
	NoteID        *int64
	CreatedAt     time.Time
	PaidAt        *time.Time
}

func referenceToDomain(m ReferenceModel) *domain.PaymentRecord {
	return &domain.PaymentRecord{
		OrderID:       m.OrderID,
		TransactionID: m.TransactionID,
		Method:        domain.MethodMultibanco,
		AmountCents:   m.AmountCents,
		State:         domain.PaymentState(m.State),
		NoteID:        m.NoteID,
		Reference:     m.Reference,
		ATMEntity:     m.ATMEntity,
		ExpiresAt:     m.ExpiresAt,
		CreatedAt:     m.CreatedAt,
		PaidAt:        m.PaidAt,
	}
}

func webPaymentToDomain(m WebPaymentModel) *domain.PaymentRecord {
	return &domain.PaymentRecord{
		OrderID:       m.OrderID,
		TransactionID: m.TransactionID,
		Method:        domain.Method(m.Method),
		AmountCents:   m.AmountCents,
		State:         domain.PaymentState(m.State),
		NoteID:        m.NoteID,
		Token:         m.Token,
		RedirectURL:   m.RedirectURL,
		CreatedAt:     m.CreatedAt,
		PaidAt:        m.PaidAt,
	}
}
