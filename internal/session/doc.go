// Package session persists per-session conference state in SQLite.
//
// Each Session keeps a key/value map (the participant tier map lives
// under KeyUserTypes as canonical JSON) and an append-only placement
// journal. Tiers written here are read back by the roster when a member
// rejoins without announcing one.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Journal queries order by seq ASC, id ASC COLLATE BINARY so replays are
// stable. Record ids are content hashes (package canon).
package session
