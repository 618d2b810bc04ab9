package domain

// NoteType keys the customer-visible order note produced by a reconciliation
// outcome. Values follow the original note catalogue.
type NoteType int

const (
	NoteCancelled         NoteType = 0
	NotePaid              NoteType = 1
	NoteExpired           NoteType = 2
	NoteCustomerCancelled NoteType = 3
)

// Message returns the customer-facing text for the note type.
func (n NoteType) Message() string {
	switch n {
	case NoteCustomerCancelled:
		return "Payment cancelled by customer."
	case NoteExpired:
		return "Unpaid order cancelled - time limit reached."
	case NotePaid:
		return "Thank you for your payment. Your order will be processed as soon as possible."
	default:
		return "Your order was cancelled. Please, contact the store owner."
	}
}
