package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/anjiri1684/consult_marketplace/database"
	"github.com/anjiri1684/consult_marketplace/metrics"
	"github.com/anjiri1684/consult_marketplace/notifications"
	"github.com/anjiri1684/consult_marketplace/payments"
	"github.com/anjiri1684/consult_marketplace/services"
	"github.com/gofiber/fiber/v2"
)

// HandlePaymentWebhook is the gateway callback. Signature failures are the
// only hard rejection; once a delivery is authenticated the endpoint always
// acks with 200 so the gateway does not hammer us with redeliveries; any
// internal processing error is logged and counted instead.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := c.Body()
	signature := c.Get("x-webhook-signature")
	timestamp := c.Get("x-webhook-timestamp")

	if !payments.VerifyWebhookSignature(rawBody, signature, timestamp) {
		log.Printf("Webhook signature verification failed")
		metrics.WebhookEvents.WithLabelValues("unknown", "bad_signature").Inc()
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid webhook signature"})
	}

	var event services.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}

	log.Printf("Received webhook %s for order %s", event.Type, event.Data.Order.OrderID)

	switch event.Type {
	case services.EventPaymentSuccess:
		emails, err := services.HandlePaymentSuccess(database.DB, event, time.Now())
		if err != nil {
			log.Printf("🔥 CRITICAL: Error processing payment success for order %s: %v", event.Data.Order.OrderID, err)
			metrics.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
		} else {
			metrics.WebhookEvents.WithLabelValues(event.Type, "ok").Inc()
			notifications.Dispatch(emails)
		}

	case services.EventPaymentFailed:
		if err := services.HandlePaymentFailure(database.DB, event); err != nil {
			log.Printf("🔥 Error processing payment failure for order %s: %v", event.Data.Order.OrderID, err)
			metrics.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
		} else {
			metrics.WebhookEvents.WithLabelValues(event.Type, "ok").Inc()
		}

	case services.EventPaymentUserDropped:
		if err := services.HandlePaymentDropped(database.DB, event); err != nil {
			log.Printf("🔥 Error processing dropped payment for order %s: %v", event.Data.Order.OrderID, err)
			metrics.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
		} else {
			metrics.WebhookEvents.WithLabelValues(event.Type, "ok").Inc()
		}

	default:
		log.Printf("Ignoring unhandled webhook event type: %s", event.Type)
		metrics.WebhookEvents.WithLabelValues(event.Type, "ignored").Inc()
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success"})
}
