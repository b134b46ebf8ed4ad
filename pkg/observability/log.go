package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/portgraph/pkg/domain"
)

// LogHooks returns hooks that write one structured record per graph event.
// Structural changes log at Debug; rejected connections and reconciliations
// that dropped connections log at Warn.
func LogHooks(logger *slog.Logger) domain.GraphHooks {
	return domain.GraphHooks{
		OnNodeAdded: func(e *domain.NodeEvent) {
			logger.Debug("node_added",
				"graph", e.Graph,
				"node_id", e.NodeID,
				"type", e.NodeType,
			)
		},
		OnNodeRemoved: func(e *domain.NodeEvent) {
			logger.Debug("node_removed", "graph", e.Graph, "node_id", e.NodeID)
		},
		OnConnected: func(e *domain.ConnectionEvent) {
			logger.Debug("connected", connectionAttrs(e)...)
		},
		OnDisconnected: func(e *domain.ConnectionEvent) {
			logger.Debug("disconnected", connectionAttrs(e)...)
		},
		OnConnectionReject: func(e *domain.ConnectionEvent) {
			logger.Warn("connection_rejected", append(connectionAttrs(e), "err", e.Err)...)
		},
		OnReconciled: func(e *domain.ReconcileEvent) {
			level := slog.LevelInfo
			if e.Dropped > 0 {
				level = slog.LevelWarn
			}
			logger.Log(context.Background(), level, "ports_reconciled",
				"graph", e.Graph,
				"node_id", e.NodeID,
				"type", e.NodeType,
				"added", e.Added,
				"removed", e.Removed,
				"retyped", e.Retyped,
				"reconnected", e.Reconnected,
				"dropped", e.Dropped,
			)
		},
	}
}

func connectionAttrs(e *domain.ConnectionEvent) []any {
	return []any{
		"graph", e.Graph,
		"output_node", e.OutputNode,
		"output_port", e.OutputPort,
		"input_node", e.InputNode,
		"input_port", e.InputPort,
	}
}
