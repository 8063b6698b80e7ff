package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total tickets issued per event",
		},
		[]string{"event_id"},
	)

	ticketsScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_scanned_total",
			Help: "Total tickets scanned per event",
		},
		[]string{"event_id"},
	)

	ticketsRefunded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_refunded_total",
			Help: "Total tickets refunded per event",
		},
		[]string{"event_id"},
	)

	paymentsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_completed_total",
			Help: "Total payments reconciled to completed",
		},
	)

	paymentsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_failed_total",
			Help: "Total payments reconciled to failed",
		},
	)

	webhooksRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhooks_rejected_total",
			Help: "Total webhook deliveries rejected before processing",
		},
	)
)

func TicketIssued(eventID string)   { ticketsIssued.WithLabelValues(eventID).Inc() }
func TicketScanned(eventID string)  { ticketsScanned.WithLabelValues(eventID).Inc() }
func TicketRefunded(eventID string) { ticketsRefunded.WithLabelValues(eventID).Inc() }
func PaymentCompleted()             { paymentsCompleted.Inc() }
func PaymentFailed()                { paymentsFailed.Inc() }
func WebhookRejected()              { webhooksRejected.Inc() }
