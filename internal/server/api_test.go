// ABOUTME: Tests for the local HTTP API handlers
// ABOUTME: Verifies routing, status codes, error strings, and the missing-store asymmetry

package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waymark-app/waymark/internal/store"
	"github.com/waymark-app/waymark/internal/workflowy"

	_ "modernc.org/sqlite"
)

// newTestServer builds a Server over a store path inside a fresh temp dir.
// The database file does not exist until createBookmarks is called.
func newTestServer(t *testing.T, workflowyURL string) (*Server, string) {
	t.Helper()
	dataDir := t.TempDir()
	dbPath := filepath.Join(dataDir, "bookmarks.db")

	s := New(Config{
		Addr:      "127.0.0.1:0",
		Store:     store.NewBookmarkStore(dbPath),
		Workflowy: workflowy.NewClient(workflowyURL),
		DataDir:   dataDir,
		Logger:    slog.Default(),
	})
	return s, dbPath
}

// createBookmarks creates the bookmarks table and inserts the given
// name/node pairs, standing in for the MCP helper that owns inserts.
func createBookmarks(t *testing.T, dbPath string, names ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE bookmarks (
		name TEXT PRIMARY KEY,
		node_id TEXT NOT NULL,
		context TEXT,
		created_at TEXT
	)`)
	require.NoError(t, err)

	for i, name := range names {
		_, err = db.Exec(`INSERT INTO bookmarks (name, node_id) VALUES (?, ?)`, name, "node-"+name)
		require.NoError(t, err, "inserting bookmark %d", i)
	}
}

func serveRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestListBookmarks_EmptyOnMissingStore(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var bookmarks []store.Bookmark
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bookmarks))
	assert.Empty(t, bookmarks)
}

func TestListBookmarks_Sorted(t *testing.T) {
	s, dbPath := newTestServer(t, "")
	createBookmarks(t, dbPath, "charlie", "alice", "bob")

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var bookmarks []store.Bookmark
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bookmarks))
	require.Len(t, bookmarks, 3)
	assert.Equal(t, "alice", bookmarks[0].Name)
	assert.Equal(t, "bob", bookmarks[1].Name)
	assert.Equal(t, "charlie", bookmarks[2].Name)
}

func TestDeleteBookmark(t *testing.T) {
	s, dbPath := newTestServer(t, "")
	createBookmarks(t, dbPath, "target", "other")

	rec := serveRequest(s, httptest.NewRequest(http.MethodDelete, "/api/bookmarks/target", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil))
	var bookmarks []store.Bookmark
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bookmarks))
	require.Len(t, bookmarks, 1)
	assert.Equal(t, "other", bookmarks[0].Name)
}

func TestDeleteBookmark_MissingStore(t *testing.T) {
	s, _ := newTestServer(t, "")

	// List reads the same condition as empty; delete surfaces it.
	rec := serveRequest(s, httptest.NewRequest(http.MethodDelete, "/api/bookmarks/anything", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp["error"], "database not found")
}

func TestDeleteBookmark_NoMatchSucceeds(t *testing.T) {
	s, dbPath := newTestServer(t, "")
	createBookmarks(t, dbPath, "only")

	rec := serveRequest(s, httptest.NewRequest(http.MethodDelete, "/api/bookmarks/absent", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUpdateContext_SetAndClear(t *testing.T) {
	s, dbPath := newTestServer(t, "")
	createBookmarks(t, dbPath, "note")

	body := bytes.NewBufferString(`{"context": "remember this"}`)
	rec := serveRequest(s, httptest.NewRequest(http.MethodPut, "/api/bookmarks/note/context", body))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil))
	var bookmarks []store.Bookmark
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bookmarks))
	require.Len(t, bookmarks, 1)
	require.NotNil(t, bookmarks[0].Context)
	assert.Equal(t, "remember this", *bookmarks[0].Context)

	// null clears the annotation.
	body = bytes.NewBufferString(`{"context": null}`)
	rec = serveRequest(s, httptest.NewRequest(http.MethodPut, "/api/bookmarks/note/context", body))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bookmarks))
	assert.Nil(t, bookmarks[0].Context)
}

func TestUpdateContext_MissingStore(t *testing.T) {
	s, _ := newTestServer(t, "")

	body := bytes.NewBufferString(`{"context": "x"}`)
	rec := serveRequest(s, httptest.NewRequest(http.MethodPut, "/api/bookmarks/x/context", body))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidateKey_Valid(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	s, _ := newTestServer(t, upstream.URL)

	body := bytes.NewBufferString(`{"api_key": " secret "}`)
	rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/validate-key", body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ValidateKeyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Valid)
}

func TestValidateKey_Rejected(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid"))
	}))
	defer upstream.Close()

	s, _ := newTestServer(t, upstream.URL)

	body := bytes.NewBufferString(`{"api_key": "bad"}`)
	rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/validate-key", body))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp["error"], "401")
	assert.Contains(t, resp["error"], "invalid")
}

func TestValidateKey_TransportFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // refuse connections

	s, _ := newTestServer(t, upstream.URL)

	body := bytes.NewBufferString(`{"api_key": "key"}`)
	rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/validate-key", body))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestValidateKey_BadBody(t *testing.T) {
	s, _ := newTestServer(t, "")

	body := bytes.NewBufferString(`{not json`)
	rec := serveRequest(s, httptest.NewRequest(http.MethodPost, "/api/validate-key", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServerPath(t *testing.T) {
	s, dbPath := newTestServer(t, "")

	rec := serveRequest(s, httptest.NewRequest(http.MethodGet, "/api/server-path", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ServerPathResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, filepath.Join(filepath.Dir(dbPath), "server.cjs"), resp.Path)
}

func TestRequestLogging_CorrelatesHandlerErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// A directory where the database file should be makes the listing fail
	// inside the handler, producing an error log alongside the completion log.
	dataDir := t.TempDir()
	dbPath := filepath.Join(dataDir, "bookmarks.db")
	require.NoError(t, os.Mkdir(dbPath, 0755))

	s := New(Config{
		Addr:      "127.0.0.1:0",
		Store:     store.NewBookmarkStore(dbPath),
		Workflowy: workflowy.NewClient(""),
		DataDir:   dataDir,
		Logger:    logger,
	})

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	ids := map[string]string{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if id, ok := entry["request_id"].(string); ok {
			ids[entry["msg"].(string)] = id
		}
	}

	errorID := ids["listing bookmarks failed"]
	completedID := ids["request completed"]
	require.NotEmpty(t, errorID, "handler error log missing request_id")
	require.NotEmpty(t, completedID, "completion log missing request_id")
	assert.Equal(t, completedID, errorID, "handler error and completion logs should share a request id")
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, "")

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/bookmarks"},
		{http.MethodGet, "/api/bookmarks/x/context"},
		{http.MethodGet, "/api/validate-key"},
		{http.MethodPost, "/api/server-path"},
	}
	for _, tc := range cases {
		rec := serveRequest(s, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", tc.method, tc.path)
	}
}
