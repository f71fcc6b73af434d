// Package metrics holds the Prometheus instruments the control loops and
// the bridge report into.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every instrument so a Session carries one registry-bound
// set instead of package globals. Tests create their own set and never
// collide on the default registry.
type Metrics struct {
	// CommandsSubmitted counts batches by the type of their first command.
	CommandsSubmitted *prometheus.CounterVec

	// LoopOutcomes counts loop completions by loop name and outcome.
	LoopOutcomes *prometheus.CounterVec

	// Polls counts snapshot reads by result (ok, publisher_down, error).
	Polls *prometheus.CounterVec

	// WaitDuration observes how long wait primitives block, by primitive.
	WaitDuration *prometheus.HistogramVec

	// ModeTransitions counts observed mode changes by destination mode.
	ModeTransitions *prometheus.CounterVec
}

// New creates the instrument set and registers it on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "overseer_commands_submitted_total",
				Help: "Command batches submitted, by first command type",
			},
			[]string{"type"},
		),
		LoopOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "overseer_loop_outcomes_total",
				Help: "Control loop completions, by loop and outcome",
			},
			[]string{"loop", "outcome"},
		),
		Polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "overseer_polls_total",
				Help: "Snapshot poll attempts, by result",
			},
			[]string{"result"},
		),
		WaitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "overseer_wait_duration_seconds",
				Help:    "Time spent blocked in wait primitives",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"primitive"},
		),
		ModeTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "overseer_mode_transitions_total",
				Help: "Observed snapshot mode changes, by destination mode",
			},
			[]string{"mode"},
		),
	}
	reg.MustRegister(m.CommandsSubmitted, m.LoopOutcomes, m.Polls, m.WaitDuration, m.ModeTransitions)
	return m
}

// NewNop returns an unregistered instrument set for callers that do not
// export metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
