/*
Package dsl provides a fluent Go DSL for declaring node types and assembling graphs.

Node types are declared once, usually at package level, instead of being
discovered by reflection:

	var Adder = dsl.Type("Adder").
		Input("a", types.Float()).
		Input("b", types.Float()).
		Output("result", types.Float()).
		New(func() any { return &adder{} }).
		MustBuild()

Graphs can then be wired programmatically, which is handy for tests and for
generating sample documents:

	b := dsl.New("demo")
	b.Add("sum", Adder).At(0, 0).Link("result", "show", "value")
	b.Add("show", Display).At(200, 0)
	g, err := b.Build()
*/
package dsl
