// Package types is the value-type system behind port type constraints.
//
// A Type has a stable Name and validates values. Built-in types are any, bool,
// int, float and string; Slice wraps an element type and is written "[elem]".
// Custom types validate with a user-supplied function and may extend a parent
// type, which is what makes Inherited constraints meaningful:
//
//	signal := types.Custom("signal", nil)
//	pulse := types.Extend("pulse", signal, nil)
//
//	types.AssignableFrom(signal, pulse) // true: pulse extends signal
//	types.AssignableFrom(types.Float(), types.Int()) // true: implicit conversion
//	types.Identical(types.Float(), types.Int()) // false
//
// Type identity is by name. A Registry resolves names (including custom types)
// back to Types for persistence.
package types
