// Package resolver keeps the registry's identity bindings in step with the
// host's package manager.
//
// The host reports package lifecycle events (added, updated, removed) and
// boot completion. The resolver matches each event against the configured
// package name of every binding and rebinds, unbinds or marks readiness.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Events are enqueued from any goroutine and applied by Run in one
// goroutine, in FIFO order. Bindings therefore change in the order the host
// reported them, even when reports arrive concurrently.
//
// Every event is stamped with a unique ID (UUIDv7 by default) and a
// monotonic seq from a logical clock. Process applies one event
// synchronously and is what the scenario harness drives.
//
// ERROR HANDLING: malformed events are logged with their ID and seq and
// skipped; the loop keeps running. An unbound privileged app is a safe state
// for every registry caller, a stopped resolver is not.
package resolver
