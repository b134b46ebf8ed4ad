package graph

import (
	"slices"

	"github.com/aretw0/portgraph/pkg/domain"
)

// rerouteEntry returns the output-side entry of connection i, which owns the waypoints.
func (p *Port) rerouteEntry(i int) (*connection, error) {
	if i < 0 || i >= len(p.connections) {
		return nil, domain.ErrIndexOutOfRange
	}
	c := p.connections[i]
	if p.direction == domain.Output {
		return c, nil
	}
	target := p.resolve(c.target)
	if target == nil {
		return nil, &domain.PortNotFoundError{Node: string(c.target.Node), Port: c.target.Port}
	}
	j := target.entryIndex(p.Ref())
	if j < 0 {
		return nil, &domain.PortNotFoundError{Node: string(p.Ref().Node), Port: p.name}
	}
	return target.connections[j], nil
}

// ReroutePoints returns a copy of the waypoints of connection i.
func (p *Port) ReroutePoints(i int) ([]domain.Vec2, error) {
	c, err := p.rerouteEntry(i)
	if err != nil {
		return nil, err
	}
	return slices.Clone(c.reroute), nil
}

// SetReroutePoints replaces the waypoints of connection i.
func (p *Port) SetReroutePoints(i int, pts []domain.Vec2) error {
	c, err := p.rerouteEntry(i)
	if err != nil {
		return err
	}
	c.reroute = slices.Clone(pts)
	return nil
}

// InsertReroutePoint inserts pt at position at of connection i's waypoints.
func (p *Port) InsertReroutePoint(i, at int, pt domain.Vec2) error {
	c, err := p.rerouteEntry(i)
	if err != nil {
		return err
	}
	if at < 0 || at > len(c.reroute) {
		return domain.ErrIndexOutOfRange
	}
	c.reroute = slices.Insert(c.reroute, at, pt)
	return nil
}

// SetReroutePoint moves the waypoint at position at of connection i.
func (p *Port) SetReroutePoint(i, at int, pt domain.Vec2) error {
	c, err := p.rerouteEntry(i)
	if err != nil {
		return err
	}
	if at < 0 || at >= len(c.reroute) {
		return domain.ErrIndexOutOfRange
	}
	c.reroute[at] = pt
	return nil
}

// RemoveReroutePoint deletes the waypoint at position at of connection i.
func (p *Port) RemoveReroutePoint(i, at int) error {
	c, err := p.rerouteEntry(i)
	if err != nil {
		return err
	}
	if at < 0 || at >= len(c.reroute) {
		return domain.ErrIndexOutOfRange
	}
	c.reroute = slices.Delete(c.reroute, at, at+1)
	return nil
}
