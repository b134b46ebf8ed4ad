package observability

import (
	"errors"

	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts graph events with Prometheus collectors.
type Metrics struct {
	Nodes          *prometheus.CounterVec
	Connections    *prometheus.CounterVec
	Rejections     *prometheus.CounterVec
	Reconciliation *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Nodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portgraph_node_events_total",
				Help: "Nodes added to or removed from graphs",
			},
			[]string{"event", "type"},
		),
		Connections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portgraph_connection_events_total",
				Help: "Connections created or removed",
			},
			[]string{"event"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portgraph_connection_rejections_total",
				Help: "Connection attempts refused by validation",
			},
			[]string{"reason"},
		),
		Reconciliation: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portgraph_reconcile_ports_total",
				Help: "Ports touched by schema reconciliation",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.Nodes, m.Connections, m.Rejections, m.Reconciliation)
	return m
}

// Hooks returns observers feeding the collectors.
func (m *Metrics) Hooks() domain.GraphHooks {
	return domain.GraphHooks{
		OnNodeAdded: func(e *domain.NodeEvent) {
			m.Nodes.WithLabelValues("added", e.NodeType).Inc()
		},
		OnNodeRemoved: func(e *domain.NodeEvent) {
			m.Nodes.WithLabelValues("removed", e.NodeType).Inc()
		},
		OnConnected: func(*domain.ConnectionEvent) {
			m.Connections.WithLabelValues("connected").Inc()
		},
		OnDisconnected: func(*domain.ConnectionEvent) {
			m.Connections.WithLabelValues("disconnected").Inc()
		},
		OnConnectionReject: func(e *domain.ConnectionEvent) {
			m.Rejections.WithLabelValues(rejectReason(e.Err)).Inc()
		},
		OnReconciled: func(e *domain.ReconcileEvent) {
			m.Reconciliation.WithLabelValues("added").Add(float64(len(e.Added)))
			m.Reconciliation.WithLabelValues("removed").Add(float64(len(e.Removed)))
			m.Reconciliation.WithLabelValues("retyped").Add(float64(len(e.Retyped)))
			m.Reconciliation.WithLabelValues("reconnected").Add(float64(e.Reconnected))
			m.Reconciliation.WithLabelValues("dropped").Add(float64(e.Dropped))
		},
	}
}

func rejectReason(err error) string {
	var rejected *domain.ConnectionRejectedError
	if errors.As(err, &rejected) {
		return string(rejected.Reason)
	}
	return "unknown"
}
