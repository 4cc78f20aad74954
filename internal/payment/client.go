// Package payment is a thin JSON client for the Mercado Pago REST API. Only
// the checkout-preference and payment-lookup endpoints used by this service
// are covered.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
)

// ErrUnreachable wraps transport-level failures talking to the gateway.
var ErrUnreachable = errors.New("payment gateway unreachable")

// APIError is a non-2xx response from the gateway. Body carries the
// gateway's own error payload verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment gateway error: status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  http.DefaultClient,
	}
}

// PreferenceRequest is the gateway-side checkout session payload.
type PreferenceRequest struct {
	Items               []PreferenceItem `json:"items"`
	Payer               *Payer           `json:"payer,omitempty"`
	BackURLs            BackURLs         `json:"back_urls"`
	AutoReturn          string           `json:"auto_return"`
	ExternalReference   string           `json:"external_reference"`
	StatementDescriptor string           `json:"statement_descriptor"`
	NotificationURL     string           `json:"notification_url,omitempty"`
}

type PreferenceItem struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	PictureURL  string          `json:"picture_url,omitempty"`
	CategoryID  string          `json:"category_id"`
	Quantity    int             `json:"quantity"`
	CurrencyID  string          `json:"currency_id"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type Payer struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Phone   Phone  `json:"phone"`
}

type Phone struct {
	AreaCode string `json:"area_code"`
	Number   string `json:"number"`
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// Preference is the created checkout session.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// Payment is the subset of the gateway payment resource we consume.
type Payment struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

// CreatePreference registers a checkout session on the gateway. This creates
// a resource on the gateway side; callers own deduplication.
func (c *Client) CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error) {
	pref := &Preference{}
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", req, pref); err != nil {
		return nil, err
	}
	return pref, nil
}

// GetPayment fetches a payment by gateway id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	payment := &Payment{}
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
