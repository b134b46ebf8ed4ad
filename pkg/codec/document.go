package codec

import "github.com/aretw0/portgraph/pkg/domain"

// CurrentVersion is the document version written by Encode.
const CurrentVersion = 1

// GraphDocument is the persisted form of a graph.
type GraphDocument struct {
	Version     int            `json:"version" yaml:"version" validate:"min=1"`
	Name        string         `json:"name" yaml:"name" validate:"required"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Nodes       []NodeDocument `json:"nodes" yaml:"nodes" validate:"unique=ID,dive"`
}

// NodeDocument is the persisted form of a node.
type NodeDocument struct {
	ID       string         `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Type     string         `json:"type" yaml:"type" mapstructure:"type" validate:"required"`
	Name     string         `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Position domain.Vec2    `json:"position" yaml:"position" mapstructure:"position"`
	State    map[string]any `json:"state,omitempty" yaml:"state,omitempty" mapstructure:"state"`
	Ports    []PortDocument `json:"ports,omitempty" yaml:"ports,omitempty" mapstructure:"ports" validate:"unique=Name,dive"`
}

// PortDocument is the persisted form of a port.
type PortDocument struct {
	Name        string               `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Type        string               `json:"type" yaml:"type" mapstructure:"type" validate:"required"`
	Direction   string               `json:"direction" yaml:"direction" mapstructure:"direction" validate:"oneof=input output"`
	Connection  string               `json:"connection,omitempty" yaml:"connection,omitempty" mapstructure:"connection" validate:"omitempty,oneof=multiple single"`
	Constraint  string               `json:"constraint,omitempty" yaml:"constraint,omitempty" mapstructure:"constraint" validate:"omitempty,oneof=none strict inherited inherited_inverse"`
	Kind        string               `json:"kind,omitempty" yaml:"kind,omitempty" mapstructure:"kind" validate:"omitempty,oneof=static dynamic list"`
	Backing     string               `json:"backing,omitempty" yaml:"backing,omitempty" mapstructure:"backing" validate:"required_if=Kind list"`
	Index       int                  `json:"index,omitempty" yaml:"index,omitempty" mapstructure:"index" validate:"min=0"`
	Connections []ConnectionDocument `json:"connections,omitempty" yaml:"connections,omitempty" mapstructure:"connections" validate:"dive"`
}

// ConnectionDocument is one connection entry of a port. Reroute points are
// only recorded on the output side.
type ConnectionDocument struct {
	Node    string        `json:"node" yaml:"node" mapstructure:"node" validate:"required"`
	Port    string        `json:"port" yaml:"port" mapstructure:"port" validate:"required"`
	Reroute []domain.Vec2 `json:"reroute,omitempty" yaml:"reroute,omitempty" mapstructure:"reroute"`
}

// Node returns the node document with the given id.
func (d *GraphDocument) Node(id string) (*NodeDocument, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// Connections counts connection entries on output ports, i.e. each
// connection once.
func (d *GraphDocument) Connections() int {
	total := 0
	for _, n := range d.Nodes {
		for _, p := range n.Ports {
			if p.Direction == domain.Output.String() {
				total += len(p.Connections)
			}
		}
	}
	return total
}
