// Package schema describes the static ports of node types.
//
// A NodeType is an explicit, declarative description of a node implementation:
// its name, an optional base type, its fields and, for fields that are ports,
// their direction and connection settings. No reflection is involved.
//
// Describe flattens a NodeType into a Schema, the ordered list of its static
// ports. A type's own fields come first, followed by its base type's fields and
// so on up to the root; a field shadows any inherited field of the same name.
// A field annotated as both input and output is a SchemaError.
//
// Lookup is the cached entry point used by the rest of the module. The cache is
// process-wide, populated on first access per type and cleared with Reset:
//
//	s, err := schema.Lookup(adder)
//	if err != nil {
//	    // malformed declaration
//	}
//	for _, p := range s.Ports() {
//	    fmt.Println(p.Name, p.Direction, p.ValueType.Name())
//	}
package schema
