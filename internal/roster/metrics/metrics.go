package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the roster module.
type Metrics struct {
	// Conflict check outcomes
	ConflictChecks *prometheus.CounterVec

	// Enrollments accepted
	EnrollmentsCreated prometheus.Counter

	// Group configuration writes by result
	GroupConfigWrites *prometheus.CounterVec
}

// New creates a new Metrics instance with all roster module metrics registered.
func New() *Metrics {
	return &Metrics{
		ConflictChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_roster_conflict_checks_total",
			Help: "Total schedule conflict checks by result",
		}, []string{"result"}), // result: "clear", "conflict"

		EnrollmentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_roster_enrollments_created_total",
			Help: "Total enrollments accepted",
		}),

		GroupConfigWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_roster_group_config_writes_total",
			Help: "Total group configuration writes by result",
		}, []string{"result"}), // result: "ok", "invalid"
	}
}

// IncrementConflictCheck records a conflict check outcome.
func (m *Metrics) IncrementConflictCheck(result string) {
	if m != nil {
		m.ConflictChecks.WithLabelValues(result).Inc()
	}
}

// IncrementEnrollments records an accepted enrollment.
func (m *Metrics) IncrementEnrollments() {
	if m != nil {
		m.EnrollmentsCreated.Inc()
	}
}

// IncrementGroupConfigWrite records a group configuration write.
func (m *Metrics) IncrementGroupConfigWrite(result string) {
	if m != nil {
		m.GroupConfigWrites.WithLabelValues(result).Inc()
	}
}
