package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSent      = "sent"
	OutcomeSimulated = "simulated"
	OutcomeFailed    = "failed"
	OutcomeStored    = "stored"
)

var (
	// Notifications counts SMS and email attempts by outcome.
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medscan_notifications_total",
			Help: "Notification attempts by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)
	// AuditEntries counts audit appends, including swallowed failures.
	AuditEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medscan_audit_entries_total",
			Help: "Audit log appends by action and outcome.",
		},
		[]string{"action", "outcome"},
	)
)

// Register adds the collectors to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{Notifications, AuditEntries} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
