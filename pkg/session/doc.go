/*
Package session implements session management and persistence orchestration.

It provides high-level abstractions for handling concurrent access to
conversation sessions across multiple replicas, combining per-key local
mutexes with optional distributed locking and a pluggable storage adapter.
*/
package session
