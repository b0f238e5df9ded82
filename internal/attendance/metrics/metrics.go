package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the attendance module.
type Metrics struct {
	// Marks recorded by classification status and policy kind
	MarksRecorded *prometheus.CounterVec

	// Eligibility refusals by reason
	EligibilityRefusals *prometheus.CounterVec

	// Full mark latency including store writes
	MarkLatency prometheus.Histogram
}

// New creates a new Metrics instance with all attendance module metrics registered.
func New() *Metrics {
	return &Metrics{
		MarksRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_attendance_marks_total",
			Help: "Total attendance marks recorded by status and policy",
		}, []string{"status", "policy"}),

		EligibilityRefusals: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_attendance_refusals_total",
			Help: "Total marking attempts refused by eligibility reason",
		}, []string{"reason"}), // reason: "not_enrolled", "no_matching_window", "already_marked"

		MarkLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rollcall_attendance_mark_duration_seconds",
			Help:    "Duration of full mark handling including persistence",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementMark records a successful mark.
func (m *Metrics) IncrementMark(status, policy string) {
	if m != nil {
		m.MarksRecorded.WithLabelValues(status, policy).Inc()
	}
}

// IncrementRefusal records an eligibility refusal.
func (m *Metrics) IncrementRefusal(reason string) {
	if m != nil {
		m.EligibilityRefusals.WithLabelValues(reason).Inc()
	}
}

// ObserveMarkLatency records the total mark handling duration.
func (m *Metrics) ObserveMarkLatency(d time.Duration) {
	if m != nil {
		m.MarkLatency.Observe(d.Seconds())
	}
}
