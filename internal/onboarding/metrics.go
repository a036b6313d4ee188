package onboarding

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts onboarding progress. A nil *Metrics records nothing.
type Metrics struct {
	started     prometheus.Counter
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	completions prometheus.Counter
}

// NewMetrics creates the onboarding collectors and registers them with reg when non-nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tangent",
			Subsystem: "onboarding",
			Name:      "sessions_started_total",
			Help:      "Onboarding sessions created",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tangent",
			Subsystem: "onboarding",
			Name:      "transitions_total",
			Help:      "Applied onboarding transitions",
		}, []string{"from", "to", "action"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tangent",
			Subsystem: "onboarding",
			Name:      "rejections_total",
			Help:      "Screen results rejected before a transition",
		}, []string{"step", "reason"}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tangent",
			Subsystem: "onboarding",
			Name:      "completions_total",
			Help:      "Onboarding sessions that reached home",
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.started, m.transitions, m.rejections, m.completions} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) sessionStarted() {
	if m == nil {
		return
	}
	m.started.Inc()
}

func (m *Metrics) transition(from, to StepID, action Action) {
	if m == nil {
		return
	}
	m.transitions.With(prometheus.Labels{"from": string(from), "to": string(to), "action": string(action)}).Inc()
}

func (m *Metrics) rejected(step StepID, reason string) {
	if m == nil {
		return
	}
	m.rejections.With(prometheus.Labels{"step": string(step), "reason": reason}).Inc()
}

func (m *Metrics) completed() {
	if m == nil {
		return
	}
	m.completions.Inc()
}
