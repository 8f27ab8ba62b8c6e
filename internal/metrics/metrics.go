package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prizedraw_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prizedraw_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TicketUnitsSoldTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prizedraw_ticket_units_sold_total",
			Help: "Total ticket units issued, paid and free",
		},
	)

	DonationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prizedraw_donations_total",
			Help: "Total number of donations",
		},
	)

	DonatedCentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prizedraw_donated_cents_total",
			Help: "Total donated amount in cents",
		},
	)

	EscrowActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prizedraw_escrow_activations_total",
			Help: "Total giveaway activations by funding mode",
		},
		[]string{"funding_mode"},
	)

	EscrowReleasedCentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prizedraw_escrow_released_cents_total",
			Help: "Total escrow released to winners in cents",
		},
	)

	DrawsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prizedraw_draws_total",
			Help: "Total winner draws by kind",
		},
		[]string{"kind"},
	)

	CancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prizedraw_cancellations_total",
			Help: "Total number of giveaway cancellations",
		},
	)

	WalletTopUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prizedraw_wallet_topups_total",
			Help: "Total number of wallet top-ups",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prizedraw_winner_notifications_total",
			Help: "Total winner notifications by outcome",
		},
		[]string{"status"},
	)

	RateLimitRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prizedraw_rate_limit_rejections_total",
			Help: "Total admin requests rejected by the rate limiter",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordTicketSale(units int) {
	TicketUnitsSoldTotal.Add(float64(units))
}

func RecordDonation(amountCents int64) {
	DonationsTotal.Inc()
	DonatedCentsTotal.Add(float64(amountCents))
}

func RecordEscrowActivation(fundingMode string) {
	EscrowActivationsTotal.WithLabelValues(fundingMode).Inc()
}

func RecordEscrowReleased(amountCents int64) {
	EscrowReleasedCentsTotal.Add(float64(amountCents))
}

func RecordDraw(kind string) {
	DrawsTotal.WithLabelValues(kind).Inc()
}

func RecordCancellation() {
	CancellationsTotal.Inc()
}

func RecordTopUp() {
	WalletTopUpsTotal.Inc()
}

func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}

func RecordRateLimitRejection() {
	RateLimitRejectionsTotal.Inc()
}
