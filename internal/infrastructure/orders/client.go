package orders

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

// HTTPOrderGateway drives order transitions through the hosting shop's
// REST API. The shop stays the system of record for orders and notes.
type HTTPOrderGateway struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

func NewOrderGateway(cfg config.ShopConfig) application.OrderGateway {
	return &HTTPOrderGateway{
		baseURL:  cfg.BaseURL,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

type orderResponse struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	TotalAmount string `json:"total_amount"`
	Paid        bool   `json:"paid"`
	ViewURL     string `json:"view_url"`
}

type statusChangeRequest struct {
	Note string `json:"note,omitempty"`
}

type completeRequest struct {
	TransactionID int64     `json:"transaction_id"`
	PaidAt        time.Time `json:"paid_at"`
}

type cancelResponse struct {
	Applied bool `json:"applied"`
}

type noteRequest struct {
	Content string `json:"content"`
}

type noteResponse struct {
	NoteID  int64  `json:"note_id"`
	Content string `json:"content"`
}

func (g *HTTPOrderGateway) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	url := fmt.Sprintf("%s/api/v1/orders/%s", g.baseURL, orderID)
	resp, err := sendRequest[any, orderResponse](g, ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:          resp.ID,
		Number:      resp.Number,
		TotalAmount: resp.TotalAmount,
		Paid:        resp.Paid,
		ViewURL:     resp.ViewURL,
	}, nil
}

func (g *HTTPOrderGateway) Hold(ctx context.Context, orderID, note string) error {
	url := fmt.Sprintf("%s/api/v1/orders/%s/hold", g.baseURL, orderID)
	req := statusChangeRequest{Note: note}
	_, err := sendRequest[statusChangeRequest, struct{}](g, ctx, http.MethodPost, url, &req)
	return err
}

func (g *HTTPOrderGateway) Complete(ctx context.Context, orderID string, transactionID int64, paidAt time.Time) error {
	url := fmt.Sprintf("%s/api/v1/orders/%s/complete", g.baseURL, orderID)
	req := completeRequest{TransactionID: transactionID, PaidAt: paidAt}
	_, err := sendRequest[completeRequest, struct{}](g, ctx, http.MethodPost, url, &req)
	return err
}

func (g *HTTPOrderGateway) Cancel(ctx context.Context, orderID, note string) (bool, error) {
	url := fmt.Sprintf("%s/api/v1/orders/%s/cancel", g.baseURL, orderID)
	req := statusChangeRequest{Note: note}
	resp, err := sendRequest[statusChangeRequest, cancelResponse](g, ctx, http.MethodPost, url, &req)
	if err != nil {
		return false, err
	}
	return resp.Applied, nil
}

func (g *HTTPOrderGateway) AddNote(ctx context.Context, orderID, note string) (int64, error) {
	url := fmt.Sprintf("%s/api/v1/orders/%s/notes", g.baseURL, orderID)
	req := noteRequest{Content: note}
	resp, err := sendRequest[noteRequest, noteResponse](g, ctx, http.MethodPost, url, &req)
	if err != nil {
		return 0, err
	}
	return resp.NoteID, nil
}

func (g *HTTPOrderGateway) DeleteNote(ctx context.Context, orderID string, noteID int64) error {
	url := fmt.Sprintf("%s/api/v1/orders/%s/notes/%d", g.baseURL, orderID, noteID)
	_, err := sendRequest[any, struct{}](g, ctx, http.MethodDelete, url, nil)
	return err
}

func (g *HTTPOrderGateway) GetNote(ctx context.Context, orderID string, noteID int64) (string, error) {
	url := fmt.Sprintf("%s/api/v1/orders/%s/notes/%d", g.baseURL, orderID, noteID)
	resp, err := sendRequest[any, noteResponse](g, ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

type shopErrorResponse struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}

type ShopError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *ShopError) Error() string {
	return fmt.Sprintf("shop error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
}

func sendRequest[Req any, Resp any](g *HTTPOrderGateway, ctx context.Context, method, url string, reqBody *Req) (*Resp, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if g.apiToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiToken)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &ShopError{Code: "NOT_FOUND", Message: "resource not found", StatusCode: resp.StatusCode}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		var shopErrResp shopErrorResponse
		if err := json.Unmarshal(body, &shopErrResp); err != nil {
			return nil, fmt.Errorf("shop returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, &ShopError{
			Code:       shopErrResp.Err,
			Message:    shopErrResp.Message,
			StatusCode: resp.StatusCode,
		}
	}

	var shopResp Resp
	if resp.StatusCode == http.StatusNoContent {
		return &shopResp, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(&shopResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &shopResp, nil
}
