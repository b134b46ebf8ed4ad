/*
Package workspace implements graph editing sessions and persistence orchestration.

A Manager loads a graph document from a ports.GraphStore, decodes it into a
live graph, lets the caller mutate it and saves it back. Edits of the same
graph are serialized by a reference-counted local lock and, when configured,
a distributed lock so several replicas can share one store.
*/
package workspace
