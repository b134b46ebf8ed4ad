/*
Package ports defines the driven ports (interfaces) for graph persistence.

These interfaces decouple the editor core from external implementations, allowing
graphs to be kept in various storage backends and shared between replicas.

# Key Interfaces

  - GraphStore: Responsible for persisting and loading graph documents.
  - GraphLoader: Read-only access to a catalog of graph documents (e.g., from Loam).
  - DistributedLocker: Provides distributed locking for concurrent edits of the same graph.
*/
package ports
