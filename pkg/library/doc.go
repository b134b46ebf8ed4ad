// Package library ships a small catalog of ready-made node types: arithmetic,
// vectors, a value display, logic gates that push signals through their
// connections, and a state machine driven by enter/exit ports.
//
// Register adds every type to a registry; MathTemplate and LogicTemplate
// build small sample graphs out of them.
package library
