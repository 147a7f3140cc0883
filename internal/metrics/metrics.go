// Package metrics collects and exposes Prometheus metrics for the shop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what handlers report auth and ordering outcomes to.
type Recorder interface {
	RecordLogin(success bool)
	RecordRegistration()
	RecordAuthRejected()
	RecordOrderPlaced(lines int)
	RecordOrderFailed(reason string)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	logins        *prometheus.CounterVec
	registrations prometheus.Counter
	authRejected  prometheus.Counter
	ordersPlaced  prometheus.Counter
	orderLines    prometheus.Counter
	orderFailed   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webshop_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webshop_registrations_total",
			Help: "Users registered.",
		}),
		authRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webshop_auth_rejected_total",
			Help: "Requests to protected routes rejected for a missing or invalid token.",
		}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webshop_orders_placed_total",
			Help: "Orders committed.",
		}),
		orderLines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webshop_order_lines_total",
			Help: "Order lines committed.",
		}),
		orderFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webshop_orders_failed_total",
			Help: "Order placements that did not commit, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		c.logins,
		c.registrations,
		c.authRejected,
		c.ordersPlaced,
		c.orderLines,
		c.orderFailed,
	)
	return c
}

func (c *Collector) RecordLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRegistration() { c.registrations.Inc() }

func (c *Collector) RecordAuthRejected() { c.authRejected.Inc() }

// RecordOrderPlaced counts one committed order with the given number of lines.
func (c *Collector) RecordOrderPlaced(lines int) {
	c.ordersPlaced.Inc()
	c.orderLines.Add(float64(lines))
}

// RecordOrderFailed counts a failed placement; reason is "invalid" or
// "transaction".
func (c *Collector) RecordOrderFailed(reason string) {
	c.orderFailed.WithLabelValues(reason).Inc()
}

// Nop discards everything.  Useful where metrics are not wired.
type Nop struct{}

func (Nop) RecordLogin(bool)         {}
func (Nop) RecordRegistration()      {}
func (Nop) RecordAuthRejected()      {}
func (Nop) RecordOrderPlaced(int)    {}
func (Nop) RecordOrderFailed(string) {}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
