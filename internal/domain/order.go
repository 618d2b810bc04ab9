package domain

import "time"

// Order is the projection of the shop's order object that the reconciliation
// core needs. The hosting platform owns the full order; we only read it
// through the order gateway.
type Order struct {
	ID          string
	Number      string
	TotalAmount string // decimal form, e.g. "19.99"
	Paid        bool
	ViewURL     string
}

// TotalCents returns the order total in the integer-cents comparison form.
func (o Order) TotalCents() (int64, error) {
	return ParseAmount(o.TotalAmount)
}

// RedirectInfo is what checkout initiation hands back to the storefront.
type RedirectInfo struct {
	Result      string `json:"result"`
	RedirectURL string `json:"redirect_url"`
}

// DisplayModel is the presentation-neutral payment layout rendered by the
// storefront (confirmation page, order e-mail, my-account page). Decision
// logic never renders HTML; it returns this value object.
type DisplayModel struct {
	Method     Method     `json:"method"`
	Entity     string     `json:"entity,omitempty"`
	Reference  string     `json:"reference,omitempty"` // chunked in groups of three
	Amount     string     `json:"amount,omitempty"`
	Expiry     *time.Time `json:"expiry,omitempty"`
	PaymentURL string     `json:"payment_url,omitempty"`
}
