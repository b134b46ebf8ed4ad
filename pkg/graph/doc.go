/*
Package graph is the mutable node-graph model.

A Graph owns an ordered sequence of Nodes. A Node owns its Ports, keyed by name.
A Port is a named, typed, directional endpoint holding an ordered list of
connections; every connection is stored on both ports, and the output side's
entry carries the cosmetic reroute waypoints.

References between objects are handles, not pointers: a connection names its
target as a PortRef (node ID plus port name), resolved through the owning graph.
Removing a node or a port therefore never leaves a dangling pointer behind, and
VerifyConnections prunes any handle that no longer resolves or lacks its mirror.

# Schema reconciliation

Every node type has a cached schema (see package schema). UpdatePorts makes a
node's live ports match it: mismatching static ports are rebuilt, obsolete ones
removed, missing ones created, and connections of rebuilt ports re-attached
where the new port still accepts them. Dynamic ports are left alone, except for
dynamic list elements, which follow the settings of their backing port.
Reconciliation is idempotent.

# Node implementations

A node may carry an implementation value (see schema.NodeType.New). The graph
talks to it through small optional interfaces: Valuer answers value queries,
Initializer runs once the node is attached, and ConnectionCreator and
ConnectionRemover observe connection changes.
*/
package graph
