package processor

// Wire shapes follow the PayPay webservice field naming. Amounts travel
// as integer cents with the decimal separator removed.

type requestEnvelope[T any] struct {
	PlatformCode string `json:"platformCode"`
	ClientID     string `json:"clientId"`
	PrivateKey   string `json:"privateKey"`
	LangCode     string `json:"langCode"`
	Request      T      `json:"request"`
}

type referenceDetailsRequest struct {
	Amount      int64  `json:"amount"`
	ProductCode string `json:"productCode,omitempty"`
	Method      string `json:"method,omitempty"`
}

type paymentOptionsResponse struct {
	PaymentOptions []paymentOption  `json:"paymentOptions"`
	State          integrationState `json:"integrationState"`
}

type paymentOption struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
}

type referenceResponse struct {
	IDTransaction int64            `json:"idTransaction"`
	Reference     string           `json:"reference"`
	ATMEntity     string           `json:"atmEntity"`
	Amount        int64            `json:"amount"`
	ValidEndDate  string           `json:"validEndDate"`
	State         integrationState `json:"integrationState"`
}

type webPaymentRequest struct {
	Order         paymentOrder `json:"order"`
	ReturnURL     string       `json:"returnUrl"`
	CancelURL     string       `json:"cancelUrl"`
	ReturnURLBack string       `json:"returnUrlBack"`
	Method        string       `json:"method"`
	Buyer         buyerInfo    `json:"buyer"`
	Billing       *address     `json:"billingAddress,omitempty"`
	Shipping      *address     `json:"shippingAddress,omitempty"`
}

type paymentOrder struct {
	Amount      int64  `json:"amount"`
	ProductCode string `json:"productCode"`
}

type buyerInfo struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	CustomerID string `json:"customerId,omitempty"`
}

type address struct {
	Country   string `json:"country"`
	State     string `json:"state"`
	StateName string `json:"stateName"`
	City      string `json:"city"`
	Street1   string `json:"street1"`
	Street2   string `json:"street2"`
	PostCode  string `json:"postCode"`
}

type webPaymentResponse struct {
	IDTransaction int64            `json:"idTransaction"`
	URL           string           `json:"url"`
	Token         string           `json:"token"`
	State         integrationState `json:"integrationState"`
}

type webhookRequest struct {
	Action string `json:"action"`
	URL    string `json:"url"`
}

type webhookResponse struct {
	State integrationState `json:"integrationState"`
}

type integrationState struct {
	State   bool   `json:"state"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type entityPaymentsRequest struct {
	Payments []statusQuery `json:"payments"`
}

type statusQuery struct {
	PaymentID int64 `json:"paymentId"`
}

type entityPaymentsResponse struct {
	Payments []paymentStatus  `json:"payments"`
	State    integrationState `json:"integrationState"`
}

type paymentStatus struct {
	PaymentID        int64  `json:"paymentId"`
	PaymentState     int    `json:"paymentState"`
	PaymentCancelled int    `json:"paymentCancelled"`
	PaymentAmount    int64  `json:"paymentAmount"`
	PaymentDate      string `json:"paymentDate"`
	Code             string `json:"code"`
}
