// Package dto holds the wire shapes shared by the HTTP and MCP adapters.
package dto

import (
	"github.com/aretw0/portgraph/pkg/schema"
)

// PortInfo describes one static port of a node type.
type PortInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Direction  string `json:"direction"`
	Connection string `json:"connection"`
	Constraint string `json:"constraint"`
	List       bool   `json:"list,omitempty"`
}

// NodeTypeInfo describes a registered node type.
type NodeTypeInfo struct {
	Name     string     `json:"name"`
	Base     string     `json:"base,omitempty"`
	Abstract bool       `json:"abstract,omitempty"`
	Ports    []PortInfo `json:"ports,omitempty"`
}

// DescribeTypes lists ts with their resolved ports. Types whose schema
// cannot be described are listed without ports.
func DescribeTypes(ts []*schema.NodeType) []NodeTypeInfo {
	out := make([]NodeTypeInfo, 0, len(ts))
	for _, t := range ts {
		info := NodeTypeInfo{Name: t.Name, Abstract: t.Abstract}
		if t.Base != nil {
			info.Base = t.Base.Name
		}
		if !t.Abstract {
			if s, err := schema.Lookup(t); err == nil {
				for _, p := range s.Ports() {
					info.Ports = append(info.Ports, PortInfo{
						Name:       p.Name,
						Type:       p.ValueType.Name(),
						Direction:  p.Direction.String(),
						Connection: p.Connection.String(),
						Constraint: p.Constraint.String(),
						List:       p.DynamicList,
					})
				}
			}
		}
		out = append(out, info)
	}
	return out
}

// GraphSummary is the short form of a stored graph.
type GraphSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Nodes       int    `json:"nodes"`
	Connections int    `json:"connections"`
}
