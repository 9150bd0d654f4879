/*
Package ports defines the driven ports (interfaces) for the tgflow engine.

These interfaces decouple the conversation logic from external
implementations, allowing the engine to work with various chat platforms,
storage backends, and lock providers.

# Key Interfaces

  - Transport: Sends, edits and deletes chat messages and answers callbacks.
  - SessionStore: Persists and loads serialized conversation sessions.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
