/*
Package portgraph is a typed port-graph editing core for node-based editors.

Nodes expose named, typed input and output ports derived from a declarative
node type description. Ports connect symmetrically under connection policies
and type constraints, and a node's ports are reconciled against its type
whenever the type changes or a stale document is loaded.

# Concept

The core (packages schema and graph) is a pure in-memory model: it never logs
and never touches storage. Observers attach through domain.GraphHooks. Graphs
are persisted as codec.GraphDocument values through the stores in
pkg/adapters, and edited concurrently through a workspace.Manager.

# Usage

The Editor bundles a type registry, hooks and the codec.

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/portgraph"
	)

	func main() {
		ed := portgraph.New()

		g, err := ed.Template("math")
		if err != nil {
			log.Fatal(err)
		}

		doc, err := ed.Encode(g)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(doc.Connections())
	}

Custom node types are declared with package dsl and registered on the
Editor's registry before documents that use them are decoded.
*/
package portgraph
