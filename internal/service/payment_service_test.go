package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-backend/internal/cache"
	"commerce-backend/internal/entity"
	"commerce-backend/internal/payment"
)

func preferenceFixture() *entity.PreferenceRequest {
	return &entity.PreferenceRequest{
		OrderID: "3e8f2b1c-0000-0000-0000-000000000001",
		Items: []entity.PreferenceItem{
			{
				ProductID:   "prod-1",
				Name:        "Keyboard",
				Description: "Mechanical keyboard",
				ImageURL:    "https://img.example.com/kb.png",
				Quantity:    2,
				UnitPrice:   decimal.RequireFromString("99.90"),
			},
		},
		Buyer: &entity.BuyerDetails{
			Name:    "Jane",
			Surname: "Doe",
			Email:   "jane@example.com",
			Phone:   "5550100",
		},
	}
}

func TestBuildPreferenceMapsCart(t *testing.T) {
	var captured payment.PreferenceRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/checkout/preferences", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(payment.Preference{
			ID:               "pref-123",
			InitPoint:        "https://gateway/init",
			SandboxInitPoint: "https://gateway/sandbox",
		})
	}))
	defer server.Close()

	client := payment.NewClient(server.URL, "token")
	svc := NewPaymentService(client, cache.NewMemory(), &recordingPublisher{},
		"public-key-1", "https://shop.example.com")

	pref, err := svc.BuildPreference(context.Background(), preferenceFixture())
	require.NoError(t, err)

	assert.Equal(t, "pref-123", pref.ID)
	assert.Equal(t, "https://gateway/init", pref.InitPoint)
	assert.Equal(t, "https://gateway/sandbox", pref.SandboxInitPoint)
	assert.Equal(t, "public-key-1", pref.PublicKey)

	require.Len(t, captured.Items, 1)
	item := captured.Items[0]
	assert.Equal(t, "prod-1", item.ID)
	assert.Equal(t, "Keyboard", item.Title)
	assert.Equal(t, "ARS", item.CurrencyID)
	assert.Equal(t, "electronics", item.CategoryID)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("99.90")))

	require.NotNil(t, captured.Payer)
	assert.Equal(t, "Jane", captured.Payer.Name)
	assert.Equal(t, "11", captured.Payer.Phone.AreaCode)
	assert.Equal(t, "5550100", captured.Payer.Phone.Number)

	assert.Equal(t, "https://shop.example.com/payment/success", captured.BackURLs.Success)
	assert.Equal(t, "https://shop.example.com/payment/failure", captured.BackURLs.Failure)
	assert.Equal(t, "https://shop.example.com/payment/pending", captured.BackURLs.Pending)
	assert.Equal(t, "approved", captured.AutoReturn)
	assert.Equal(t, "3e8f2b1c-0000-0000-0000-000000000001", captured.ExternalReference)
	assert.Equal(t, "COMMERCE", captured.StatementDescriptor)
}

func TestBuildPreferenceLocalhostOriginFallback(t *testing.T) {
	var captured payment.PreferenceRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(payment.Preference{ID: "pref-123"})
	}))
	defer server.Close()

	client := payment.NewClient(server.URL, "token")
	svc := NewPaymentService(client, cache.NewMemory(), &recordingPublisher{},
		"public-key-1", "http://localhost:3000, https://shop.example.com")

	_, err := svc.BuildPreference(context.Background(), preferenceFixture())
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/payment/success", captured.BackURLs.Success)
}

func TestBuildPreferenceIdempotentReplay(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(payment.Preference{ID: "pref-123"})
	}))
	defer server.Close()

	client := payment.NewClient(server.URL, "token")
	svc := NewPaymentService(client, cache.NewMemory(), &recordingPublisher{},
		"public-key-1", "https://shop.example.com")

	first, err := svc.BuildPreference(context.Background(), preferenceFixture())
	require.NoError(t, err)
	second, err := svc.BuildPreference(context.Background(), preferenceFixture())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "replay must not create a second gateway resource")
}

func TestBuildPreferenceGatewayRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid items"}`))
	}))
	defer server.Close()

	client := payment.NewClient(server.URL, "token")
	svc := NewPaymentService(client, cache.NewMemory(), &recordingPublisher{},
		"public-key-1", "https://shop.example.com")

	_, err := svc.BuildPreference(context.Background(), preferenceFixture())
	var apiErr *payment.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid items")
}

func TestBuildPreferenceGatewayUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := payment.NewClient(server.URL, "token")
	svc := NewPaymentService(client, cache.NewMemory(), &recordingPublisher{},
		"public-key-1", "https://shop.example.com")

	_, err := svc.BuildPreference(context.Background(), preferenceFixture())
	assert.ErrorIs(t, err, payment.ErrUnreachable)
}

func TestGetPaymentStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/payments/42":
			json.NewEncoder(w).Encode(payment.Payment{ID: 42, Status: "approved"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := payment.NewClient(server.URL, "token")
	svc := NewPaymentService(client, cache.NewMemory(), &recordingPublisher{},
		"public-key-1", "https://shop.example.com")

	status, err := svc.GetPaymentStatus(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "approved", status)

	_, err = svc.GetPaymentStatus(context.Background(), "999")
	assert.ErrorIs(t, err, entity.ErrPaymentNotFound)
}

func TestHandleWebhookPublishesNotification(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewPaymentService(nil, cache.NewMemory(), publisher,
		"public-key-1", "https://shop.example.com")

	err := svc.HandleWebhook(context.Background(), "payment", "42", map[string]interface{}{"action": "payment.updated"})
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	assert.Contains(t, publisher.events[0], "payment-notification-42")
}
