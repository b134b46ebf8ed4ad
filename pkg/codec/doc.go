// Package codec converts graphs to and from their persisted document form.
//
// A GraphDocument is plain data: every node records its type by name, its
// implementation state as a map and its ports with their own connection
// entries. Decode resolves the names through a registry.Resolver and
// restores the graph, repairing asymmetric connections and reconciling each
// node with its type's current schema.
package codec
