/*
Package observability provides graph observers for logging and metrics.

Both LogHooks and Metrics produce a domain.GraphHooks value that can be
attached to a graph with graph.WithHooks or to a workspace with
workspace.WithHooks. Hooks from several observers are combined with
GraphHooks.Merge.
*/
package observability
