package portgraph_test

import (
	"fmt"
	"log"

	"github.com/aretw0/portgraph"
	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/library"
)

// ExampleEditor_Template builds a sample graph and reads a value through it.
func ExampleEditor_Template() {
	ed := portgraph.New()

	g, err := ed.Template("math")
	if err != nil {
		log.Fatal(err)
	}

	show, err := g.Node("show")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(library.DisplayValue(show))
	fmt.Println(len(g.Edges()))
	// Output:
	// 9
	// 3
}

// ExampleEditor_Decode restores a hand-written document. Ports left out of
// the document are rebuilt from the node type.
func ExampleEditor_Decode() {
	ed := portgraph.New()

	doc, err := codec.Unmarshal([]byte(`
version: 1
name: tiny
nodes:
  - id: sum
    type: MathNode
    state: {a: 2, b: 3}
`), codec.FormatYAML)
	if err != nil {
		log.Fatal(err)
	}

	g, err := ed.Decode(doc)
	if err != nil {
		log.Fatal(err)
	}

	n, _ := g.Node("sum")
	for _, p := range n.Ports() {
		fmt.Println(p.Name(), p.Direction())
	}
	result, _ := n.OutputPort("result")
	fmt.Println(result.OutputValue())
	// Output:
	// a input
	// b input
	// result output
	// 5
}
