package domain

// NodeEvent describes a node joining or leaving a graph.
type NodeEvent struct {
	Graph    string `json:"graph"`
	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`
	NodeName string `json:"node_name"`
}

// ConnectionEvent describes a connection between an output and an input port.
// Err is set only for rejected attempts.
type ConnectionEvent struct {
	Graph      string `json:"graph"`
	OutputNode string `json:"output_node"`
	OutputPort string `json:"output_port"`
	InputNode  string `json:"input_node"`
	InputPort  string `json:"input_port"`
	Err        error  `json:"-"`
}

// ReconcileEvent summarizes one port reconciliation that changed something.
type ReconcileEvent struct {
	Graph       string   `json:"graph"`
	NodeID      string   `json:"node_id"`
	NodeType    string   `json:"node_type"`
	Added       []string `json:"added,omitempty"`
	Removed     []string `json:"removed,omitempty"`
	Retyped     []string `json:"retyped,omitempty"`
	Reconnected int      `json:"reconnected"`
	Dropped     int      `json:"dropped"`
}

// GraphHooks defines callbacks for graph observability.
// Every field is optional. Hooks run synchronously after the change is applied.
type GraphHooks struct {
	OnNodeAdded        func(*NodeEvent)
	OnNodeRemoved      func(*NodeEvent)
	OnConnected        func(*ConnectionEvent)
	OnDisconnected     func(*ConnectionEvent)
	OnConnectionReject func(*ConnectionEvent)
	OnReconciled       func(*ReconcileEvent)
}

// Merge returns hooks that call h first and then other.
func (h GraphHooks) Merge(other GraphHooks) GraphHooks {
	return GraphHooks{
		OnNodeAdded:        chain(h.OnNodeAdded, other.OnNodeAdded),
		OnNodeRemoved:      chain(h.OnNodeRemoved, other.OnNodeRemoved),
		OnConnected:        chain(h.OnConnected, other.OnConnected),
		OnDisconnected:     chain(h.OnDisconnected, other.OnDisconnected),
		OnConnectionReject: chain(h.OnConnectionReject, other.OnConnectionReject),
		OnReconciled:       chain(h.OnReconciled, other.OnReconciled),
	}
}

func chain[E any](a, b func(*E)) func(*E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e *E) {
		a(e)
		b(e)
	}
}
