package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics
var (
	RequestsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nutscredit_requests_submitted_total",
		Help: "Supply requests submitted for approval",
	})

	RequestsDecided = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nutscredit_requests_decided_total",
		Help: "Supply request decisions by outcome",
	}, []string{"outcome"})

	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nutscredit_notification_failures_total",
		Help: "Outbound chat notifications that could not be delivered",
	})

	ConversationsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nutscredit_conversations_active",
		Help: "Chat sessions currently inside a multi-step conversation",
	})

	ChatConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nutscredit_chat_connections",
		Help: "Chat endpoints currently connected to the hub",
	})
)
