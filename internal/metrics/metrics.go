package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load stage and record kind labels.
const (
	KindAirport   = "airport"
	KindFix       = "fix"
	KindNavaid    = "navaid"
	KindAirway    = "airway"
	KindProcedure = "procedure"
	KindUserFix   = "user_fix"
	KindMetar     = "metar"

	ReasonMalformed  = "malformed"
	ReasonUnresolved = "unresolved"
	ReasonDuplicate  = "duplicate"
)

// Metrics counts what a load accepted and rejected. Each instance owns
// its registry so that several loads can coexist. A nil *Metrics is a
// valid no-op sink.
type Metrics struct {
	registry *prometheus.Registry

	loaded   *prometheus.CounterVec
	rejected *prometheus.CounterVec
	stage    *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		loaded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "navgraph_records_loaded_total",
			Help: "Records added to the navigation graph",
		}, []string{"kind"}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "navgraph_records_rejected_total",
			Help: "Records skipped because they could not be parsed or resolved",
		}, []string{"kind", "reason"}),
		stage: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "navgraph_load_stage_seconds",
			Help:    "Duration of each load stage",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}, []string{"stage"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Loaded(kind string) {
	if m == nil {
		return
	}
	m.loaded.WithLabelValues(kind).Inc()
}

func (m *Metrics) Rejected(kind, reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(kind, reason).Inc()
}

// Stage returns a func that records the time elapsed since Stage was
// called. Typical use is defer m.Stage("airports")().
func (m *Metrics) Stage(name string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		d := time.Since(start)
		if m != nil {
			m.stage.WithLabelValues(name).Observe(d.Seconds())
		}
		return d
	}
}

// Sample is one counter value with its labels joined by "/".
type Sample struct {
	Name  string
	Label string
	Value float64
}

// Counters returns every counter sample, sorted by name then label.
func (m *Metrics) Counters() ([]Sample, error) {
	if m == nil {
		return nil, nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			c := metric.GetCounter()
			if c == nil {
				continue
			}
			label := ""
			for i, lp := range metric.GetLabel() {
				if i > 0 {
					label += "/"
				}
				label += lp.GetValue()
			}
			out = append(out, Sample{Name: mf.GetName(), Label: label, Value: c.GetValue()})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}
