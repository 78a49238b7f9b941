// Package store provides a SQLite-backed log of translations.
//
// Every recorded translation belongs to a session and is stamped with a
// logical sequence number. Records are content-addressed: the id is a
// domain-separated SHA-256 of the canonical JSON of the direction, the
// input and the composer flags, so recording the same translation twice
// is a no-op.
//
// # Ordering
//
// Reads use ORDER BY seq ASC, id COLLATE BINARY ASC so that listings and
// replays are identical across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
