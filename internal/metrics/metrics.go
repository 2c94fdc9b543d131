package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

type Metrics struct {
	CartOperations  *prometheus.CounterVec
	CartCache       *prometheus.CounterVec
	CheckoutResults *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
	CheckoutEvents  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		CartOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Cart operations by name and result",
		}, []string{"operation", "result"}),
		CartCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "cache_lookups_total",
			Help:      "Cart cache lookups by result",
		}, []string{"result"}),
		CheckoutResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "resolve_total",
			Help:      "Checkout session resolutions by outcome",
		}, []string{"outcome"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Payments provider call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"call"}),
		CheckoutEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "checkout_completed_total",
			Help:      "checkout.session.completed events by stage and result",
		}, []string{"stage", "result"}),
	}
}

// Register adds all collectors to reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.CartOperations,
		m.CartCache,
		m.CheckoutResults,
		m.ProviderLatency,
		m.CheckoutEvents,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
