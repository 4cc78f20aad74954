package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"commerce-backend/internal/cache"
	"commerce-backend/internal/entity"
	"commerce-backend/internal/payment"
)

const (
	preferenceCurrency   = "ARS"
	preferenceCategory   = "electronics"
	defaultPhoneAreaCode = "11"
	statementDescriptor  = "COMMERCE"

	// A preference is an externally created resource with no gateway-side
	// idempotency, so replays within this window are answered from cache
	// instead of creating a duplicate checkout session.
	preferenceCacheTTL = 24 * time.Hour
)

// PaymentGateway is the outbound surface of the payment client.
type PaymentGateway interface {
	CreatePreference(ctx context.Context, req *payment.PreferenceRequest) (*payment.Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*payment.Payment, error)
}

type PaymentService struct {
	gateway        PaymentGateway
	cache          cache.Client
	publisher      EventPublisher
	publicKey      string
	allowedOrigins string
}

func NewPaymentService(gateway PaymentGateway, cache cache.Client, publisher EventPublisher, publicKey, allowedOrigins string) *PaymentService {
	return &PaymentService{
		gateway:        gateway,
		cache:          cache,
		publisher:      publisher,
		publicKey:      publicKey,
		allowedOrigins: allowedOrigins,
	}
}

func preferenceCacheKey(orderID string) string {
	return fmt.Sprintf("preference:order:%s", orderID)
}

// BuildPreference translates the cart into a gateway checkout session and
// returns the redirect targets. Repeat calls for the same order within the
// idempotency window return the previously created session.
func (s *PaymentService) BuildPreference(ctx context.Context, req *entity.PreferenceRequest) (*entity.Preference, error) {
	key := preferenceCacheKey(req.OrderID)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		pref := &entity.Preference{}
		if err := json.Unmarshal([]byte(cached), pref); err == nil {
			logger.Info().Msgf("Reusing payment preference %s for order %s", pref.ID, req.OrderID)
			return pref, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.Error().Err(err).Msgf("Error reading preference cache for order %s", req.OrderID)
	}

	items := make([]payment.PreferenceItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, payment.PreferenceItem{
			ID:          item.ProductID,
			Title:       item.Name,
			Description: item.Description,
			PictureURL:  item.ImageURL,
			CategoryID:  preferenceCategory,
			Quantity:    item.Quantity,
			CurrencyID:  preferenceCurrency,
			UnitPrice:   item.UnitPrice,
		})
	}

	var payer *payment.Payer
	if req.Buyer != nil {
		payer = &payment.Payer{
			Name:    req.Buyer.Name,
			Surname: req.Buyer.Surname,
			Email:   req.Buyer.Email,
			Phone: payment.Phone{
				AreaCode: defaultPhoneAreaCode,
				Number:   req.Buyer.Phone,
			},
		}
	}

	base := s.returnURLBase()
	logger.Info().Msgf("Using return URL base %s for order %s", base, req.OrderID)

	gatewayReq := &payment.PreferenceRequest{
		Items: items,
		Payer: payer,
		BackURLs: payment.BackURLs{
			Success: base + "/payment/success",
			Failure: base + "/payment/failure",
			Pending: base + "/payment/pending",
		},
		AutoReturn:          "approved",
		ExternalReference:   req.OrderID,
		StatementDescriptor: statementDescriptor,
	}

	created, err := s.gateway.CreatePreference(ctx, gatewayReq)
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating payment preference for order %s", req.OrderID)
		return nil, err
	}

	pref := &entity.Preference{
		ID:               created.ID,
		InitPoint:        created.InitPoint,
		SandboxInitPoint: created.SandboxInitPoint,
		PublicKey:        s.publicKey,
	}

	if payload, err := json.Marshal(pref); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), preferenceCacheTTL); err != nil {
			logger.Error().Err(err).Msgf("Error caching preference for order %s", req.OrderID)
		}
	}

	logger.Info().Msgf("Created payment preference %s for order %s", pref.ID, req.OrderID)
	return pref, nil
}

// returnURLBase picks the first allowed origin, falling back to the second
// when the first is a localhost development URL.
func (s *PaymentService) returnURLBase() string {
	origins := strings.Split(s.allowedOrigins, ",")
	base := strings.TrimSpace(origins[0])
	if strings.Contains(base, "localhost") && len(origins) > 1 {
		base = strings.TrimSpace(origins[1])
	}
	return base
}

// GetPaymentStatus looks the payment up on the gateway and returns its
// status label.
func (s *PaymentService) GetPaymentStatus(ctx context.Context, paymentID string) (string, error) {
	pmt, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		var apiErr *payment.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return "", entity.ErrPaymentNotFound
		}
		return "", err
	}
	return pmt.Status, nil
}

// PaymentNotification is the gateway's webhook envelope.
type PaymentNotification struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// HandleWebhook acknowledges a gateway notification and hands it to the
// notification topic for asynchronous processing.
func (s *PaymentService) HandleWebhook(ctx context.Context, notificationType, id string, payload map[string]interface{}) error {
	logger.Info().Msgf("Webhook received: type=%s id=%s", notificationType, id)

	event := PaymentNotification{Type: notificationType, ID: id}
	key := fmt.Sprintf("payment-notification-%s", id)
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		logger.Error().Err(err).Msg("Error publishing payment notification")
	}
	return nil
}
