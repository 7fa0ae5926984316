package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_webhook_events_total",
		Help: "Payment gateway webhook deliveries by event type and outcome.",
	}, []string{"type", "outcome"})

	BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_booking_transitions_total",
		Help: "Booking status transitions applied.",
	}, []string{"to"})

	PayoutDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_payout_decisions_total",
		Help: "Admin payout decisions.",
	}, []string{"decision"})
)
