package consumer

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"commerce-backend/internal/service"
)

// Consumer applies asynchronous gateway payment notifications to orders: an
// approved payment marks its order paid, a rejected or cancelled one cancels
// it. The payment's external reference carries the order id.
type Consumer struct {
	gateway service.PaymentGateway
	orders  *service.OrderService
}

func NewConsumer(gateway service.PaymentGateway, orders *service.OrderService) *Consumer {
	return &Consumer{gateway: gateway, orders: orders}
}

// StartKafkaConsumer blocks reading the payment-notifications topic.
func (c *Consumer) StartKafkaConsumer(reader *kafka.Reader) {
	for {
		ctx := context.Background()
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Error().Msgf("Error reading message: %v", err)
			continue
		}

		c.processMessage(ctx, msg)
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	var notification service.PaymentNotification
	if err := json.Unmarshal(msg.Value, &notification); err != nil {
		log.Error().Msgf("Error unmarshalling notification: %v", err)
		return
	}

	if notification.Type != "payment" {
		log.Info().Msgf("Ignoring notification type %q", notification.Type)
		return
	}

	pmt, err := c.gateway.GetPayment(ctx, notification.ID)
	if err != nil {
		log.Error().Msgf("Error fetching payment %s: %v", notification.ID, err)
		return
	}

	status := ""
	switch pmt.Status {
	case "approved":
		status = "paid"
	case "rejected", "cancelled":
		status = "cancelled"
	default:
		log.Info().Msgf("Payment %d still %s, nothing to apply", pmt.ID, pmt.Status)
		return
	}

	orderID, err := uuid.Parse(pmt.ExternalReference)
	if err != nil {
		log.Error().Msgf("Payment %d carries no usable external reference %q", pmt.ID, pmt.ExternalReference)
		return
	}

	if _, err := c.orders.UpdateStatus(ctx, orderID, status); err != nil {
		log.Error().Msgf("Error updating order %s to %s: %v", orderID, status, err)
		return
	}
	log.Info().Msgf("Order %s marked %s from payment %d", orderID, status, pmt.ID)
}
