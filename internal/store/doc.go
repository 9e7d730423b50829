// Package store provides SQLite-backed durable storage for device-policy
// settings.
//
// The store keeps:
//   - settings: the current value of each policy flag
//   - settings_history: an append-only log of every write and its source
//
// # Read Path
//
// The registry consults settings while holding its lock, so reads must never
// touch the database. The store keeps a settings.Memory cache, warmed at
// Open and updated after each committed write. Settings() exposes that cache
// as a policy.Settings.
//
// # Ordering
//
// History rows are ordered by seq, a logical clock (MAX(seq)+1 inside the
// write transaction), never by wall time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
