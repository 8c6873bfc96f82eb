package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matbook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matbook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matbook_bookings_total",
			Help: "Total number of class bookings",
		},
		[]string{"status", "booking_type"},
	)

	BookingCancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matbook_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
		[]string{"refunded"},
	)

	WaitlistPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matbook_waitlist_promotions_total",
			Help: "Total number of waitlist promotions",
		},
	)

	CheckInsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matbook_check_ins_total",
			Help: "Total number of member check-ins",
		},
	)

	CreditLedgerEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matbook_credit_ledger_entries_total",
			Help: "Total number of credit ledger entries written",
		},
		[]string{"type"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matbook_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matbook_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status, bookingType string) {
	BookingsTotal.WithLabelValues(status, bookingType).Inc()
}

func RecordCancellation(refunded bool) {
	if refunded {
		BookingCancellationsTotal.WithLabelValues("true").Inc()
	} else {
		BookingCancellationsTotal.WithLabelValues("false").Inc()
	}
}

func RecordWaitlistPromotion() {
	WaitlistPromotionsTotal.Inc()
}

func RecordCheckIn() {
	CheckInsTotal.Inc()
}

func RecordLedgerEntry(entryType string) {
	CreditLedgerEntriesTotal.WithLabelValues(entryType).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
