// Package store provides SQLite-backed storage for document collections.
//
// Each document is stored twice in one row:
//   - body: the friendly rendering with full numeric precision, parsed
//     back on every read
//   - body_json: the JSON-compatible rendering, queried with SQLite's JSON
//     functions when a predicate can be pushed down
//
// Documents are keyed by their _id. Numerically equal ids share a key
// whatever their numeric kind, so Int(1) and Long(1) collide.
//
// # Query Execution
//
// Find and Count compile the predicate with querysql. An exact fragment
// is executed as-is, including LIMIT and OFFSET. An inexact fragment
// selects a superset that is rechecked row by row with query.Match before
// paging. A predicate with nothing pushable scans the collection.
//
// # Ordering
//
// All reads order by seq, the insertion sequence, so paging is stable.
// Update keeps a document's position; Upsert of a new id appends.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Dropping a collection removes its documents
package store
