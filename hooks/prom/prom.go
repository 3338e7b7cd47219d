// Package prom exports omnicache hook events as Prometheus counters.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/omnicache"
)

type Hooks struct {
	resolved     *prometheus.CounterVec
	fallbacks    *prometheus.CounterVec
	setRejected  *prometheus.CounterVec
	partialMulti *prometheus.CounterVec
	missedKeys   *prometheus.CounterVec
	selfHeals    *prometheus.CounterVec
	driverErrors *prometheus.CounterVec
}

var _ omnicache.Hooks = (*Hooks)(nil)

// New creates the counters and registers them with reg
// (prometheus.DefaultRegisterer when nil).
func New(reg prometheus.Registerer) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hooks{
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omnicache_drivers_resolved_total",
			Help: "Driver handles constructed by the registry",
		}, []string{"type"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omnicache_driver_fallbacks_total",
			Help: "Unknown driver selectors resolved to the default driver",
		}, []string{"requested", "used"}),
		setRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omnicache_set_rejected_total",
			Help: "Writes the driver refused without an error",
		}, []string{"multi"}),
		partialMulti: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omnicache_partial_multi_total",
			Help: "GetMulti calls that found fewer keys than requested",
		}, []string{"prefix"}),
		missedKeys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omnicache_multi_missed_keys_total",
			Help: "Keys absent from GetMulti results",
		}, []string{"prefix"}),
		selfHeals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omnicache_self_heals_total",
			Help: "Undecodable entries dropped and deleted on read",
		}, []string{"reason"}),
		driverErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omnicache_driver_errors_total",
			Help: "Driver operation failures",
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{h.resolved, h.fallbacks, h.setRejected, h.partialMulti, h.missedKeys, h.selfHeals, h.driverErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) DriverResolved(driverType, _ string) {
	h.resolved.WithLabelValues(driverType).Inc()
}

func (h *Hooks) DriverFallback(requested, used string) {
	h.fallbacks.WithLabelValues(requested, used).Inc()
}

func (h *Hooks) DriverSetRejected(_ string, isMulti bool) {
	if isMulti {
		h.setRejected.WithLabelValues("true").Inc()
		return
	}
	h.setRejected.WithLabelValues("false").Inc()
}

func (h *Hooks) PartialMulti(prefix string, requested, found int) {
	h.partialMulti.WithLabelValues(prefix).Inc()
	h.missedKeys.WithLabelValues(prefix).Add(float64(requested - found))
}

func (h *Hooks) SelfHeal(_, reason string) {
	h.selfHeals.WithLabelValues(reason).Inc()
}

func (h *Hooks) DriverError(op string, _ error) {
	h.driverErrors.WithLabelValues(op).Inc()
}
