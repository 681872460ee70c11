package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xtding233/buffon-needle/internal/needle"
)

const defaultMetricsNamespace = "buffon"

// Config contains metrics configuration.
type Config struct {
	// Namespace is the prometheus namespace for all metrics. If empty, defaults to "buffon".
	Namespace string
	// ConstLabels are added to all metrics, e.g. the run id.
	ConstLabels map[string]string
	// Registerer is the prometheus registerer to use. If nil, prometheus.DefaultRegisterer is used.
	Registerer prometheus.Registerer
}

// Registry holds the simulation metrics. It implements sim.Observer.
type Registry struct {
	needlesTotal   prometheus.Counter
	crossedTotal   prometheus.Counter
	piEstimate     prometheus.Gauge
	crossRatio     prometheus.Gauge
	theoreticRatio prometheus.Gauge
}

// New creates and registers all metrics for a run under cfg.
func New(cfg Config, sim needle.Config) (*Registry, error) {
	registerer := cfg.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = defaultMetricsNamespace
	}
	constLabels := prometheus.Labels(cfg.ConstLabels)

	r := &Registry{
		needlesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "needles_total",
			Help:        "Number of needles dropped.",
			ConstLabels: constLabels,
		}),
		crossedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "needles_crossed_total",
			Help:        "Number of dropped needles that crossed a line.",
			ConstLabels: constLabels,
		}),
		piEstimate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        "pi_estimate",
			Help:        "Current approximation of pi (total / crossed). NaN until the first crossing.",
			ConstLabels: constLabels,
		}),
		crossRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        "cross_ratio",
			Help:        "Current crossed / total ratio. NaN before the first needle.",
			ConstLabels: constLabels,
		}),
		theoreticRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        "cross_probability",
			Help:        "Theoretical crossing probability for the configured needle and line spacing.",
			ConstLabels: constLabels,
		}),
	}
	for _, c := range []prometheus.Collector{r.needlesTotal, r.crossedTotal, r.piEstimate, r.crossRatio, r.theoreticRatio} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	r.theoreticRatio.Set(needle.CrossProbability(sim))
	r.piEstimate.Set(needle.PiEstimate(sim, needle.Stats{}))
	r.crossRatio.Set(needle.State{}.Snapshot().Ratio)
	return r, nil
}

// Observe records one drop.
func (r *Registry) Observe(d needle.Drop, st needle.Stats) {
	r.needlesTotal.Inc()
	if d.Crossed {
		r.crossedTotal.Inc()
	}
	r.piEstimate.Set(st.PiApprox)
	r.crossRatio.Set(st.Ratio)
}
