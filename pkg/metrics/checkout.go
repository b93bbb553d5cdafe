package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records register activity: scans, finalized and cancelled
// baskets, and how long a basket stays open before it is closed.
type CheckoutMetrics struct {
	scans          *prometheus.CounterVec
	unknownBarcode *prometheus.CounterVec
	finalized      *prometheus.CounterVec
	cancelled      *prometheus.CounterVec
	saleTotal      *prometheus.HistogramVec
	openDuration   *prometheus.HistogramVec
	openBaskets    *prometheus.GaugeVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_scans_total",
		Help: "Items scanned or added to a basket.",
	}, []string{"register"})
	unknownBarcode := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_unknown_barcodes_total",
		Help: "Scans that matched no catalog product.",
	}, []string{"register"})
	finalized := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_baskets_finalized_total",
		Help: "Baskets finalized into sales.",
	}, []string{"register", "payment_method"})
	cancelled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_baskets_cancelled_total",
		Help: "Baskets cleared without a sale.",
	}, []string{"register"})
	saleTotal := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_sale_total",
		Help:    "Grand total of finalized sales.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"register"})
	openDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_basket_open_seconds",
		Help:    "Time between the first item and basket close.",
		Buckets: prometheus.DefBuckets,
	}, []string{"register"})
	openBaskets := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "checkout_open_baskets",
		Help: "Baskets currently held open per register.",
	}, []string{"register"})
	reg.MustRegister(scans, unknownBarcode, finalized, cancelled, saleTotal, openDuration, openBaskets)
	return &CheckoutMetrics{
		scans:          scans,
		unknownBarcode: unknownBarcode,
		finalized:      finalized,
		cancelled:      cancelled,
		saleTotal:      saleTotal,
		openDuration:   openDuration,
		openBaskets:    openBaskets,
	}
}

// IncScan counts one item added on the register.
func (c *CheckoutMetrics) IncScan(register string) {
	if c == nil || c.scans == nil {
		return
	}
	c.scans.WithLabelValues(normalizeLabel(register)).Inc()
}

// IncUnknownBarcode counts a scan that resolved to no product.
func (c *CheckoutMetrics) IncUnknownBarcode(register string) {
	if c == nil || c.unknownBarcode == nil {
		return
	}
	c.unknownBarcode.WithLabelValues(normalizeLabel(register)).Inc()
}

// IncFinalized counts a finalized basket and observes its grand total.
func (c *CheckoutMetrics) IncFinalized(register, paymentMethod string, total float64) {
	if c == nil || c.finalized == nil {
		return
	}
	c.finalized.WithLabelValues(normalizeLabel(register), normalizeLabel(paymentMethod)).Inc()
	c.saleTotal.WithLabelValues(normalizeLabel(register)).Observe(total)
}

// IncCancelled counts a basket cleared without a sale.
func (c *CheckoutMetrics) IncCancelled(register string) {
	if c == nil || c.cancelled == nil {
		return
	}
	c.cancelled.WithLabelValues(normalizeLabel(register)).Inc()
}

// ObserveOpenDuration records how long a closed basket had been open.
func (c *CheckoutMetrics) ObserveOpenDuration(register string, duration time.Duration) {
	if c == nil || c.openDuration == nil {
		return
	}
	c.openDuration.WithLabelValues(normalizeLabel(register)).Observe(duration.Seconds())
}

// SetOpenBaskets reports the number of baskets currently held on the register.
func (c *CheckoutMetrics) SetOpenBaskets(register string, count int) {
	if c == nil || c.openBaskets == nil {
		return
	}
	c.openBaskets.WithLabelValues(normalizeLabel(register)).Set(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
