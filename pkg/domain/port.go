package domain

import "fmt"

// Direction tells whether a port receives or provides values.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Opposite returns the direction a partner port must have.
func (d Direction) Opposite() Direction {
	if d == Input {
		return Output
	}
	return Input
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "input":
		return Input, nil
	case "output":
		return Output, nil
	default:
		return Input, fmt.Errorf("unknown direction %q", s)
	}
}

// ConnectionPolicy limits how many connections a port accepts.
// The zero value is Multiple.
type ConnectionPolicy int

const (
	Multiple ConnectionPolicy = iota
	// Single permits exactly one connection. Connecting again replaces it.
	Single
)

func (p ConnectionPolicy) String() string {
	switch p {
	case Multiple:
		return "multiple"
	case Single:
		return "single"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseConnectionPolicy accepts "single", "multiple" or "" (Multiple).
func ParseConnectionPolicy(s string) (ConnectionPolicy, error) {
	switch s {
	case "", "multiple":
		return Multiple, nil
	case "single":
		return Single, nil
	default:
		return Multiple, fmt.Errorf("unknown connection policy %q", s)
	}
}

// TypeConstraint decides which value types may meet across a connection.
type TypeConstraint int

const (
	// ConstraintNone permits any pair of types.
	ConstraintNone TypeConstraint = iota
	// ConstraintStrict requires identical types.
	ConstraintStrict
	// ConstraintInherited requires the input type to be assignable from the output type.
	ConstraintInherited
	// ConstraintInheritedInverse requires the output type to be assignable from the input type.
	ConstraintInheritedInverse
)

func (c TypeConstraint) String() string {
	switch c {
	case ConstraintNone:
		return "none"
	case ConstraintStrict:
		return "strict"
	case ConstraintInherited:
		return "inherited"
	case ConstraintInheritedInverse:
		return "inherited_inverse"
	default:
		return fmt.Sprintf("constraint(%d)", int(c))
	}
}

// ParseTypeConstraint accepts the String forms and "" (None).
func ParseTypeConstraint(s string) (TypeConstraint, error) {
	switch s {
	case "", "none":
		return ConstraintNone, nil
	case "strict":
		return ConstraintStrict, nil
	case "inherited":
		return ConstraintInherited, nil
	case "inherited_inverse":
		return ConstraintInheritedInverse, nil
	default:
		return ConstraintNone, fmt.Errorf("unknown type constraint %q", s)
	}
}

// Vec2 is a point on the canvas. Used for node positions and reroute waypoints.
type Vec2 struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Add returns the component-wise sum.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
