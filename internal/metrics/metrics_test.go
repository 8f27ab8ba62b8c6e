package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/giveaways", "200", 0.5)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/giveaways", "200"))
	assert.Equal(t, float64(1), count)
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/auth/login", "200", 0.1)
	RecordHTTPRequest("POST", "/auth/login", "200", 0.2)
	RecordHTTPRequest("POST", "/auth/login", "401", 0.05)

	successCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "200"))
	failCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "401"))

	assert.Equal(t, float64(2), successCount)
	assert.Equal(t, float64(1), failCount)
}

func TestRecordTicketSale(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prizedraw_ticket_units_sold_total_test",
			Help: "Total ticket units issued, paid and free",
		},
	)

	oldCounter := TicketUnitsSoldTotal
	TicketUnitsSoldTotal = testCounter
	defer func() { TicketUnitsSoldTotal = oldCounter }()

	RecordTicketSale(5)
	RecordTicketSale(1)

	count := testutil.ToFloat64(testCounter)
	assert.Equal(t, float64(6), count)
}

func TestRecordDonation(t *testing.T) {
	donations := prometheus.NewCounter(prometheus.CounterOpts{Name: "prizedraw_donations_total_test"})
	cents := prometheus.NewCounter(prometheus.CounterOpts{Name: "prizedraw_donated_cents_total_test"})

	oldDonations, oldCents := DonationsTotal, DonatedCentsTotal
	DonationsTotal, DonatedCentsTotal = donations, cents
	defer func() { DonationsTotal, DonatedCentsTotal = oldDonations, oldCents }()

	RecordDonation(1000)
	RecordDonation(250)

	assert.Equal(t, float64(2), testutil.ToFloat64(donations))
	assert.Equal(t, float64(1250), testutil.ToFloat64(cents))
}

func TestRecordEscrowActivation(t *testing.T) {
	EscrowActivationsTotal.Reset()

	RecordEscrowActivation("escrowed")
	RecordEscrowActivation("escrowed")
	RecordEscrowActivation("admin_bypass")

	escrowed := testutil.ToFloat64(EscrowActivationsTotal.WithLabelValues("escrowed"))
	bypass := testutil.ToFloat64(EscrowActivationsTotal.WithLabelValues("admin_bypass"))

	assert.Equal(t, float64(2), escrowed)
	assert.Equal(t, float64(1), bypass)
}

func TestRecordDraw(t *testing.T) {
	DrawsTotal.Reset()

	RecordDraw("draft")
	RecordDraw("repick")
	RecordDraw("draft")

	draft := testutil.ToFloat64(DrawsTotal.WithLabelValues("draft"))
	repick := testutil.ToFloat64(DrawsTotal.WithLabelValues("repick"))

	assert.Equal(t, float64(2), draft)
	assert.Equal(t, float64(1), repick)
}

func TestRecordNotification(t *testing.T) {
	NotificationsTotal.Reset()

	RecordNotification("sent")
	RecordNotification("failed")
	RecordNotification("sent")

	sent := testutil.ToFloat64(NotificationsTotal.WithLabelValues("sent"))
	failed := testutil.ToFloat64(NotificationsTotal.WithLabelValues("failed"))

	assert.Equal(t, float64(2), sent)
	assert.Equal(t, float64(1), failed)
}

func TestRecordTopUp(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prizedraw_wallet_topups_total_test",
			Help: "Total number of wallet top-ups",
		},
	)

	oldCounter := WalletTopUpsTotal
	WalletTopUpsTotal = testCounter
	defer func() { WalletTopUpsTotal = oldCounter }()

	RecordTopUp()
	RecordTopUp()
	RecordTopUp()

	count := testutil.ToFloat64(testCounter)
	assert.Equal(t, float64(3), count)
}

func TestRecordEscrowReleased(t *testing.T) {
	testCounter := prometheus.NewCounter(prometheus.CounterOpts{Name: "prizedraw_escrow_released_cents_total_test"})

	oldCounter := EscrowReleasedCentsTotal
	EscrowReleasedCentsTotal = testCounter
	defer func() { EscrowReleasedCentsTotal = oldCounter }()

	RecordEscrowReleased(52000)

	assert.Equal(t, float64(52000), testutil.ToFloat64(testCounter))
}
