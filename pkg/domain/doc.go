/*
Package domain contains the vocabulary shared by every portgraph package.

It defines the enumerations that describe a port (direction, connection policy,
type constraint), the 2D vector used for positions and reroute waypoints, the
error taxonomy and the hooks through which observers watch a graph change.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Direction: Input or Output. A connection always joins one of each.
  - ConnectionPolicy: Single (one connection, replacing) or Multiple.
  - TypeConstraint: the rule deciding which value types may be connected.
  - GraphHooks: callbacks fired after nodes and connections change.
*/
package domain
