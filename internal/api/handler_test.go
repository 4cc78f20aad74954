package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-backend/internal/cache"
	"commerce-backend/internal/entity"
	"commerce-backend/internal/payment"
	"commerce-backend/internal/service"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func jsonRequest(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegisterRejectsMissingCredentials(t *testing.T) {
	h := NewUserHandler(nil)

	for _, body := range []string{
		`{}`,
		`{"email":"jane@example.com"}`,
		`{"password":"secret"}`,
	} {
		c, rec := jsonRequest(http.MethodPost, "/auth/register", body)
		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestLoginRejectsMissingCredentials(t *testing.T) {
	h := NewUserHandler(nil)

	c, rec := jsonRequest(http.MethodPost, "/auth/login", `{"email":"jane@example.com"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserRejectsMalformedID(t *testing.T) {
	h := NewUserHandler(nil)

	c, rec := jsonRequest(http.MethodGet, "/users/not-a-uuid", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	require.NoError(t, h.GetUserByID(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	h := NewOrderHandler(nil)

	c, rec := jsonRequest(http.MethodPost, "/orders", `{"email":"jane@example.com","items":[]}`)
	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no items")
}

func TestCreateOrderRequiresPurchaser(t *testing.T) {
	h := NewOrderHandler(nil)

	body := `{"items":[{"product_id":"9b2f4c7e-0000-0000-0000-000000000001","quantity":1}]}`
	c, rec := jsonRequest(http.MethodPost, "/orders", body)
	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePreferenceRejectsIncompleteRequest(t *testing.T) {
	h := NewPaymentHandler(nil)

	for _, body := range []string{
		`{"items":[{"product_id":"p1","quantity":1}]}`,
		`{"order_id":"3e8f2b1c-0000-0000-0000-000000000001","items":[]}`,
	} {
		c, rec := jsonRequest(http.MethodPost, "/payments/create-preference", body)
		require.NoError(t, h.CreatePreference(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestErrorJSONMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"user not found", entity.ErrUserNotFound, 404, "user not found"},
		{"product not found", entity.ErrProductNotFound, 404, "product not found"},
		{"order not found", entity.ErrOrderNotFound, 404, "order not found"},
		{"payment not found", entity.ErrPaymentNotFound, 404, "payment not found"},
		{"email taken", entity.ErrEmailTaken, 400, "email"},
		{"insufficient stock", entity.ErrInsufficientStock, 400, "stock"},
		{"bad credentials", entity.ErrInvalidCredentials, 401, "credentials"},
		{"gateway rejection", &payment.APIError{StatusCode: 400, Body: "invalid items"}, 400, "invalid items"},
		{"gateway down", payment.ErrUnreachable, 500, "unreachable"},
		{"unknown", errors.New("sql: driver busted"), 500, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := jsonRequest(http.MethodGet, "/", "")
			require.NoError(t, errorJSON(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestWebhookAcknowledgesUnknownTypes(t *testing.T) {
	// The gateway retries unacknowledged notifications, so even unrecognized
	// payloads are accepted with a 200.
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook?type=test&id=1", strings.NewReader(`{"action":"test"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	svc := service.NewPaymentService(nil, cache.NewMemory(), nopPublisher{}, "pk", "https://shop.example.com")
	h := NewPaymentHandler(svc)
	require.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
