package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema is matched by every SchemaError.
	ErrSchema = errors.New("invalid node schema")

	// ErrPortNotFound is matched by every PortNotFoundError.
	ErrPortNotFound = errors.New("port not found")

	// ErrInvalidPortOperation is matched by every InvalidPortOperationError.
	ErrInvalidPortOperation = errors.New("invalid port operation")

	// ErrConnectionRejected is matched by every ConnectionRejectedError.
	ErrConnectionRejected = errors.New("connection rejected")

	// ErrNodeNotFound is returned when a node ID is not part of the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrGraphNotFound is returned when a graph ID cannot be found in the store.
	ErrGraphNotFound = errors.New("graph not found")

	// ErrGraphExists is returned when creating a graph under an ID already in use.
	ErrGraphExists = errors.New("graph already exists")

	// ErrUnknownNodeType is returned when a node type name is not registered.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrUnknownValueType is returned when a value type name cannot be parsed.
	ErrUnknownValueType = errors.New("unknown value type")

	// ErrIndexOutOfRange is returned for connection or waypoint indices past the end.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// SchemaError reports a malformed node type declaration.
type SchemaError struct {
	NodeType string
	Field    string
	Reason   string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("node type %q: %s", e.NodeType, e.Reason)
	}
	return fmt.Sprintf("node type %q field %q: %s", e.NodeType, e.Field, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// PortNotFoundError reports a lookup of a port name the node does not have.
type PortNotFoundError struct {
	Node string
	Port string
}

func (e *PortNotFoundError) Error() string {
	return fmt.Sprintf("port %q not found on node %q", e.Port, e.Node)
}

func (e *PortNotFoundError) Is(target error) bool { return target == ErrPortNotFound }

// InvalidPortOperationError reports a request the core refuses without mutating anything.
type InvalidPortOperationError struct {
	Op     string
	Port   string
	Reason string
}

func (e *InvalidPortOperationError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Op, e.Port, e.Reason)
}

func (e *InvalidPortOperationError) Is(target error) bool { return target == ErrInvalidPortOperation }

// RejectReason explains why a connection attempt was refused.
type RejectReason string

const (
	RejectNilPort        RejectReason = "nil_port"
	RejectSamePort       RejectReason = "same_port"
	RejectSameDirection  RejectReason = "same_direction"
	RejectTypeConstraint RejectReason = "type_constraint"
	RejectDetached       RejectReason = "detached"
	RejectForeignGraph   RejectReason = "foreign_graph"
)

// ConnectionRejectedError is returned by a refused connect. Callers that treat
// rejection as a silent no-op may simply ignore it.
type ConnectionRejectedError struct {
	From   string
	To     string
	Reason RejectReason
}

func (e *ConnectionRejectedError) Error() string {
	return fmt.Sprintf("cannot connect %s to %s: %s", e.From, e.To, e.Reason)
}

func (e *ConnectionRejectedError) Is(target error) bool { return target == ErrConnectionRejected }
