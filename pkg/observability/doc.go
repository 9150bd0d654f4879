/*
Package observability provides tools for monitoring the tgflow engine.

It bundles the Prometheus collectors the app records against while handling
updates: inbound update counts and latencies plus flow lifecycle counters
and the in-progress flow gauge.
*/
package observability
