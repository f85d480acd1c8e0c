// Package store reads and mutates the waymark bookmarks database.
//
// # Ownership
//
// The database file (<data_dir>/bookmarks.db) is created and populated by
// the bundled MCP helper process. This package never creates the table or
// inserts rows; it lists bookmarks, deletes them by name, and updates their
// free-text context annotation.
//
// # Connection Model
//
// There is no long-lived connection. Every operation stats the file, opens
// a fresh connection via modernc.org/sqlite, and closes it before
// returning. File-level locking is left to SQLite.
//
// # Store Absence
//
// The two sides of the boundary treat a missing file differently, and the
// asymmetry is deliberate:
//
//   - ListBookmarks: missing file reads as an empty list (first run)
//   - DeleteBookmark / UpdateContext: missing file is ErrStoreNotFound
//
// # Migration
//
// Older databases predate the context column. ListBookmarks runs an
// additive migration before querying: inspect pragma_table_info, add the
// nullable TEXT column if absent. Idempotent, derived from the live column
// set each time. Failures surface as ErrMigration and abort the read.
//
// # Error Handling
//
//   - ErrStoreNotFound: mutating operation against a missing database file
//   - ErrMigration: schema introspection or alteration failed
//
// Rows that fail to decode during a listing are dropped, not fatal; the
// dropped count is logged as a diagnostic.
package store
