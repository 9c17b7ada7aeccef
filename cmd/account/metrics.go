package account

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Login and registration outcomes used as the "result" label.
const (
	ResultOK          = "ok"
	ResultInvalid     = "invalid"
	ResultConflict    = "conflict"
	ResultNotFound    = "not_found"
	ResultBadPassword = "bad_password"
	ResultError       = "error"
)

// Chain scan kinds used as the "kind" label of the validation duration histogram.
const (
	ScanStored = "stored" // against an account's credential
	ScanDummy  = "dummy"  // decoy scan for an unknown handle
)

// Metrics records credential activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	validate      *prometheus.HistogramVec
	matchDepth    prometheus.Histogram
}

// NewMetrics registers account metrics on reg. A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "murmur",
			Subsystem: "account",
			Name:      "registrations_total",
			Help:      "Account registrations by result.",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "murmur",
			Subsystem: "account",
			Name:      "logins_total",
			Help:      "Credential checks (login and delete) by result.",
		}, []string{"result"}),
		validate: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "murmur",
			Subsystem: "credential",
			Name:      "validate_duration_seconds",
			Help:      "Time spent scanning a credential chain, by scan kind.",
			Buckets:   prometheus.ExponentialBuckets(5e-6, 2, 12),
		}, []string{"kind"}),
		matchDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "murmur",
			Subsystem: "credential",
			Name:      "match_depth",
			Help:      "Chain depth at which successful validations matched.",
			Buckets:   prometheus.LinearBuckets(0, 10, 10),
		}),
	}

	for _, c := range []prometheus.Collector{m.registrations, m.logins, m.validate, m.matchDepth} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) registration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// validated records one chain scan. Only stored scans can contribute a match depth.
func (m *Metrics) validated(kind string, d time.Duration, depth int, ok bool) {
	if m == nil {
		return
	}
	m.validate.WithLabelValues(kind).Observe(d.Seconds())
	if ok && kind == ScanStored {
		m.matchDepth.Observe(float64(depth))
	}
}
