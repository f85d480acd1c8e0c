// ABOUTME: Bookmark data type and error values for waymark persistence
// ABOUTME: Defines the Bookmark struct and the sentinel errors store operations return

package store

import "errors"

// ErrStoreNotFound is returned by mutating operations when the bookmarks
// database file does not exist. ListBookmarks deliberately does not return
// this: an absent store reads as empty (first-run behavior).
var ErrStoreNotFound = errors.New("database not found")

// ErrMigration wraps schema introspection or alteration failures.
var ErrMigration = errors.New("schema migration failed")

// Bookmark is a named reference to a Workflowy outline node.
//
// Context and CreatedAt are nil for rows written before those columns
// existed. Name and NodeID are immutable once written; there is no rename
// or move operation.
type Bookmark struct {
	Name      string  `json:"name"`
	NodeID    string  `json:"node_id"`
	Context   *string `json:"context,omitempty"`
	CreatedAt *string `json:"created_at,omitempty"`
}
