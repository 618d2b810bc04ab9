package processor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/config"
	"github.com/lusopay/paypay-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) application.ProcessorClient {
	return NewProcessorClient(config.ProcessorConfig{
		BaseURL:      baseURL,
		PlatformCode: "0004",
		NIF:          "123456789",
		PrivateKey:   "test-key",
		LangCode:     "PT",
		ConnTimeout:  5 * time.Second,
	})
}

func TestCreatePaymentReference(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/webservice/createPaymentReference", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]any{
			"idTransaction": 789001,
			"reference":     "123456789",
			"atmEntity":     "11249",
			"amount":        1999,
			"validEndDate":  "2025-03-05 23:59:59",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.CreatePaymentReference(context.Background(), application.ReferenceDetailsRequest{
		AmountCents: 1999,
		OrderRef:    "201",
		Method:      domain.MethodMultibanco,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(789001), resp.TransactionID)
	assert.Equal(t, "123456789", resp.Reference)
	assert.Equal(t, "11249", resp.ATMEntity)
	assert.Equal(t, int64(1999), resp.AmountCents)
	assert.Equal(t, 2025, resp.ValidEndDate.Year())

	// Credentials ride in the envelope on every call.
	assert.Equal(t, "0004", captured["platformCode"])
	assert.Equal(t, "123456789", captured["clientId"])
	assert.Equal(t, "test-key", captured["privateKey"])

	request, ok := captured["request"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1999), request["amount"])
	assert.Equal(t, "201", request["productCode"])
}

func TestCheckEntityPayments_BatchedQueries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/webservice/checkEntityPayments", r.URL.Path)

		var envelope struct {
			Request struct {
				Payments []struct {
					PaymentID int64 `json:"paymentId"`
				} `json:"payments"`
			} `json:"request"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		require.Len(t, envelope.Request.Payments, 2)

		json.NewEncoder(w).Encode(map[string]any{
			"payments": []map[string]any{
				{"paymentId": 1, "paymentState": 1, "paymentAmount": 1000, "paymentDate": "2025-03-02 08:00:00"},
				{"paymentId": 2, "paymentState": 0, "code": "0062"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	statuses, err := client.CheckEntityPayments(context.Background(), []application.StatusQuery{
		{TransactionID: 1},
		{TransactionID: 2},
	})
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, int64(1), statuses[0].TransactionID)
	assert.Equal(t, 1, statuses[0].State)
	assert.Equal(t, int64(1000), statuses[0].AmountCents)

	assert.Equal(t, application.CodeNotFound, statuses[1].Code)
}

func TestSubscribeWebhook_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"integrationState": map[string]any{
				"state":   false,
				"message": "Invalid credentials",
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.SubscribeWebhook(context.Background(), application.WebhookSubscriptionRequest{
		Action:      "payment_confirmed",
		CallbackURL: "https://gateway.test/paypay/webhook",
	})
	require.NoError(t, err)
	assert.False(t, resp.Accepted)
	assert.Equal(t, "Invalid credentials", resp.Message)
}

func TestSendRequest_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "AUTH",
			"message": "invalid platform credentials",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ValidatePaymentReference(context.Background(), application.ReferenceDetailsRequest{AmountCents: 1000})
	require.Error(t, err)

	procErr, ok := IsProcessorError(err)
	require.True(t, ok)
	assert.Equal(t, "AUTH", procErr.Code)
	assert.Equal(t, http.StatusUnauthorized, procErr.StatusCode)
}

func TestSendRequest_Unreachable(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	_, err := client.ValidatePaymentReference(context.Background(), application.ReferenceDetailsRequest{AmountCents: 1000})
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeProcessorError))
}
