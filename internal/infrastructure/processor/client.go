package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/config"
	"github.com/lusopay/paypay-gateway/internal/domain"
)

const dateLayout = "2006-01-02 15:04:05"

// HTTPProcessorClient talks to the PayPay webservice. Every call carries
// the platform credentials in the request envelope; calls are never
// retried here.
type HTTPProcessorClient struct {
	baseURL      string
	platformCode string
	clientID     string
	privateKey   string
	langCode     string
	httpClient   *http.Client
}

func NewProcessorClient(cfg config.ProcessorConfig) application.ProcessorClient {
	return &HTTPProcessorClient{
		baseURL:      cfg.BaseURL,
		platformCode: cfg.PlatformCode,
		clientID:     cfg.NIF,
		privateKey:   cfg.PrivateKey,
		langCode:     cfg.LangCode,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

func (c *HTTPProcessorClient) ValidatePaymentReference(ctx context.Context, req application.ReferenceDetailsRequest) (*application.PaymentOptionsResponse, error) {
	url := fmt.Sprintf("%s/webservice/validatePaymentReference", c.baseURL)
	body := referenceDetailsRequest{
		Amount:      req.AmountCents,
		ProductCode: req.OrderRef,
	}

	resp, err := sendRequest[referenceDetailsRequest, paymentOptionsResponse](c, ctx, url, body)
	if err != nil {
		return nil, err
	}

	options := make([]application.PaymentOption, 0, len(resp.PaymentOptions))
	for _, opt := range resp.PaymentOptions {
		options = append(options, application.PaymentOption{
			Code:        opt.Code,
			Name:        opt.Name,
			Description: opt.Description,
			IconURL:     opt.IconURL,
		})
	}
	return &application.PaymentOptionsResponse{Options: options}, nil
}

func (c *HTTPProcessorClient) CreatePaymentReference(ctx context.Context, req application.ReferenceDetailsRequest) (*application.ReferenceResponse, error) {
	url := fmt.Sprintf("%s/webservice/createPaymentReference", c.baseURL)
	body := referenceDetailsRequest{
		Amount:      req.AmountCents,
		ProductCode: req.OrderRef,
		Method:      string(req.Method),
	}

	resp, err := sendRequest[referenceDetailsRequest, referenceResponse](c, ctx, url, body)
	if err != nil {
		return nil, err
	}

	out := &application.ReferenceResponse{
		TransactionID: resp.IDTransaction,
		Reference:     resp.Reference,
		ATMEntity:     resp.ATMEntity,
		AmountCents:   resp.Amount,
	}
	if resp.ValidEndDate != "" {
		validEnd, err := time.Parse(dateLayout, resp.ValidEndDate)
		if err != nil {
			return nil, fmt.Errorf("parse reference expiry %q: %w", resp.ValidEndDate, err)
		}
		out.ValidEndDate = validEnd
	}
	return out, nil
}

func (c *HTTPProcessorClient) CreateWebPayment(ctx context.Context, req application.WebPaymentRequest) (*application.WebPaymentResponse, error) {
	url := fmt.Sprintf("%s/webservice/doWebPayment", c.baseURL)
	body := webPaymentRequest{
		Order: paymentOrder{
			Amount:      req.AmountCents,
			ProductCode: req.OrderRef,
		},
		ReturnURL:     req.ReturnURL,
		CancelURL:     req.CancelURL,
		ReturnURLBack: req.ReturnURL,
		Method:        string(req.Method),
		Buyer: buyerInfo{
			FirstName:  req.Buyer.FirstName,
			LastName:   req.Buyer.LastName,
			Email:      req.Buyer.Email,
			CustomerID: req.Buyer.CustomerID,
		},
		Billing:  toWireAddress(req.Billing),
		Shipping: toWireAddress(req.Shipping),
	}

	resp, err := sendRequest[webPaymentRequest, webPaymentResponse](c, ctx, url, body)
	if err != nil {
		return nil, err
	}

	return &application.WebPaymentResponse{
		TransactionID: resp.IDTransaction,
		URL:           resp.URL,
		Token:         resp.Token,
	}, nil
}

func (c *HTTPProcessorClient) SubscribeWebhook(ctx context.Context, req application.WebhookSubscriptionRequest) (*application.WebhookSubscriptionResponse, error) {
	url := fmt.Sprintf("%s/webservice/subscribeToWebhook", c.baseURL)
	body := webhookRequest{
		Action: req.Action,
		URL:    req.CallbackURL,
	}

	resp, err := sendRequest[webhookRequest, webhookResponse](c, ctx, url, body)
	if err != nil {
		return nil, err
	}

	return &application.WebhookSubscriptionResponse{
		Accepted: resp.State.State,
		Message:  resp.State.Message,
	}, nil
}

func (c *HTTPProcessorClient) CheckEntityPayments(ctx context.Context, queries []application.StatusQuery) ([]application.PaymentStatus, error) {
	url := fmt.Sprintf("%s/webservice/checkEntityPayments", c.baseURL)
	body := entityPaymentsRequest{
		Payments: make([]statusQuery, 0, len(queries)),
	}
	for _, q := range queries {
		body.Payments = append(body.Payments, statusQuery{PaymentID: q.TransactionID})
	}

	resp, err := sendRequest[entityPaymentsRequest, entityPaymentsResponse](c, ctx, url, body)
	if err != nil {
		return nil, err
	}

	statuses := make([]application.PaymentStatus, 0, len(resp.Payments))
	for _, p := range resp.Payments {
		statuses = append(statuses, application.PaymentStatus{
			TransactionID: p.PaymentID,
			State:         p.PaymentState,
			Cancelled:     p.PaymentCancelled,
			AmountCents:   p.PaymentAmount,
			Date:          p.PaymentDate,
			Code:          p.Code,
		})
	}
	return statuses, nil
}

func toWireAddress(a *application.Address) *address {
	if a == nil {
		return nil
	}
	return &address{
		Country:   a.Country,
		State:     a.State,
		StateName: a.StateName,
		City:      a.City,
		Street1:   a.Street1,
		Street2:   a.Street2,
		PostCode:  a.PostCode,
	}
}

func sendRequest[Req any, Resp any](c *HTTPProcessorClient, ctx context.Context, url string, reqBody Req) (*Resp, error) {
	envelope := requestEnvelope[Req]{
		PlatformCode: c.platformCode,
		ClientID:     c.clientID,
		PrivateKey:   c.privateKey,
		LangCode:     c.langCode,
		Request:      reqBody,
	}

	jsonData, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewProcessorError(fmt.Errorf("error making request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var procErrResp processorErrorResponse
		if err := json.Unmarshal(body, &procErrResp); err != nil {
			return nil, fmt.Errorf("processor returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, &ProcessorError{
			Code:       procErrResp.Err,
			Message:    procErrResp.Message,
			StatusCode: resp.StatusCode,
		}
	}

	var procResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&procResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &procResp, nil
}
