// Package registry keeps the node types an editor can instantiate and
// resolves the names stored in graph documents back to types.
package registry
