package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	cartMutations *prometheus.CounterVec
	payments      *prometheus.CounterVec
	checkoutTotal prometheus.Histogram
	jobRuns       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil registerer yields a no-op value.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_mutations_total",
			Help: "Cart mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Gateway charges by purpose and outcome.",
		}, []string{"purpose", "outcome"}),
		checkoutTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkout_final_total_inr",
			Help:    "Final checkout totals in rupees.",
			Buckets: []float64{250, 500, 750, 1000, 1500, 2500, 5000},
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cron_job_runs_total",
			Help: "Scheduled job runs by job name and outcome.",
		}, []string{"job", "outcome"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cron_job_duration_seconds",
			Help:    "Scheduled job duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
	}
	reg.MustRegister(m.requests, m.latency, m.cartMutations, m.payments, m.checkoutTotal, m.jobRuns, m.jobDuration)
	return m
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// IncCartMutation counts a cart operation; err decides the outcome label.
func (m *Metrics) IncCartMutation(op string, err error) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op), outcome(err)).Inc()
}

// IncPayment counts a gateway charge attempt.
func (m *Metrics) IncPayment(purpose string, err error) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(purpose), outcome(err)).Inc()
}

// ObserveCheckoutTotal records the final amount of a placed order.
func (m *Metrics) ObserveCheckoutTotal(amount float64) {
	if m == nil || m.checkoutTotal == nil {
		return
	}
	m.checkoutTotal.Observe(amount)
}

// ObserveJob records one scheduled job run.
func (m *Metrics) ObserveJob(job string, elapsed time.Duration, err error) {
	if m == nil || m.jobRuns == nil {
		return
	}
	job = normalizeLabel(job)
	m.jobRuns.WithLabelValues(job, outcome(err)).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
