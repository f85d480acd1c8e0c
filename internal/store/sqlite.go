// ABOUTME: SQLite-backed bookmark store using modernc.org/sqlite
// ABOUTME: Opens the database per operation and applies additive schema migration before reads

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"
)

// BookmarkStore reads and mutates the bookmarks database file.
//
// The file is created and populated by the MCP helper process; this store
// never creates the table or inserts rows. Every operation re-checks that
// the file exists and opens a fresh connection, so the store carries no
// connection state between calls.
type BookmarkStore struct {
	path   string
	logger *slog.Logger
}

// NewBookmarkStore returns a store for the database file at path.
// The file is not opened or created here.
func NewBookmarkStore(path string) *BookmarkStore {
	return &BookmarkStore{
		path:   path,
		logger: slog.Default().With("component", "store"),
	}
}

// Path returns the location of the backing database file.
func (s *BookmarkStore) Path() string {
	return s.path
}

// open opens a fresh connection to the database file.
// No journal-mode pragma is set: the helper process that owns the file
// decides its journal mode.
func (s *BookmarkStore) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// exists reports whether the database file is present on disk.
func (s *BookmarkStore) exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// ensureSchema applies the additive migration for the context column.
// Idempotent: a second call finds the column and does nothing. Schema state
// is derived from pragma_table_info each time rather than a version table,
// which only holds up for additive single-column changes.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info('bookmarks')`)
	if err != nil {
		return fmt.Errorf("%w: reading table info: %w", ErrMigration, err)
	}
	defer rows.Close()

	hasContext := false
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("%w: scanning table info: %w", ErrMigration, err)
		}
		if name == "context" {
			hasContext = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: reading table info: %w", ErrMigration, err)
	}

	if hasContext {
		return nil
	}

	// Errors here include the table missing entirely. That is surfaced, not
	// swallowed: without the column the row query below would fail anyway.
	if _, err := db.ExecContext(ctx, `ALTER TABLE bookmarks ADD COLUMN context TEXT`); err != nil {
		return fmt.Errorf("%w: adding context column: %w", ErrMigration, err)
	}
	return nil
}

// ListBookmarks returns all bookmarks ordered by name ascending.
//
// An absent database file reads as an empty list, not an error (first run).
// The schema migration runs before the query. Rows that fail to decode are
// dropped rather than aborting the listing; the dropped count is logged.
func (s *BookmarkStore) ListBookmarks(ctx context.Context) ([]Bookmark, error) {
	if !s.exists() {
		return []Bookmark{}, nil
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := ensureSchema(ctx, db); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT name, node_id, context, created_at FROM bookmarks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []Bookmark{}
	dropped := 0
	for rows.Next() {
		var b Bookmark
		var bmContext, createdAt sql.NullString
		if err := rows.Scan(&b.Name, &b.NodeID, &bmContext, &createdAt); err != nil {
			dropped++
			continue
		}
		if bmContext.Valid {
			b.Context = &bmContext.String
		}
		if createdAt.Valid {
			b.CreatedAt = &createdAt.String
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading bookmarks: %w", err)
	}

	if dropped > 0 {
		s.logger.Warn("dropped undecodable bookmark rows", "count", dropped, "path", s.path)
	}
	return bookmarks, nil
}

// DeleteBookmark removes the bookmark with the given name.
// Deleting a name that matches no row succeeds; that is the SQL DELETE
// semantics and callers rely on it. An absent database file is an error.
func (s *BookmarkStore) DeleteBookmark(ctx context.Context, name string) error {
	if !s.exists() {
		return ErrStoreNotFound
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `DELETE FROM bookmarks WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting bookmark: %w", err)
	}
	return nil
}

// UpdateContext sets or clears the free-text context annotation on a
// bookmark. A nil context clears any prior annotation to NULL. A name that
// matches no row is a no-op success. An absent database file is an error.
func (s *BookmarkStore) UpdateContext(ctx context.Context, name string, bmContext *string) error {
	if !s.exists() {
		return ErrStoreNotFound
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `UPDATE bookmarks SET context = ? WHERE name = ?`, bmContext, name); err != nil {
		return fmt.Errorf("updating bookmark context: %w", err)
	}
	return nil
}
