package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Trades
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trades_total",
			Help: "Total executed trades",
		},
		[]string{"type"}, // buy|sell
	)
	TradesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trades_rejected_total",
			Help: "Trades rejected by validation",
		},
		[]string{"type", "reason"},
	)

	// Quote provider
	QuoteLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_lookups_total",
			Help: "Quote lookups by outcome",
		},
		[]string{"result"}, // ok|error
	)

	Registrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "user_registrations_total",
			Help: "Successful user registrations",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(TradesTotal)
		prometheus.MustRegister(TradesRejected)
		prometheus.MustRegister(QuoteLookups)
		prometheus.MustRegister(Registrations)
	})
}

func ObserveQuoteLookup(err error) {
	if err != nil {
		QuoteLookups.WithLabelValues("error").Inc()
		return
	}
	QuoteLookups.WithLabelValues("ok").Inc()
}

// Reasoner is implemented by rejection errors that carry a metric label.
type Reasoner interface {
	Reason() string
}

func ObserveTrade(kind string, err error) {
	if err == nil {
		TradesTotal.WithLabelValues(kind).Inc()
		return
	}
	var r Reasoner
	if errors.As(err, &r) {
		TradesRejected.WithLabelValues(kind, r.Reason()).Inc()
	}
}
