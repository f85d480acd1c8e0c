// Package server exposes the backend operations over a loopback HTTP API.
//
// The desktop shell is the only client. Every operation the shell needs is
// one endpoint:
//
//	GET    /health                        liveness check
//	GET    /api/bookmarks                 list bookmarks, sorted by name
//	DELETE /api/bookmarks/{name}          delete by name
//	PUT    /api/bookmarks/{name}/context  set or clear the context annotation
//	POST   /api/validate-key              check a Workflowy API key
//	GET    /api/server-path               installed MCP helper path
//
// Failures cross the boundary as {"error": "<human-readable string>"}; the
// shell presents the string to the user as-is. The missing-database
// asymmetry from the store is preserved: listing answers an empty array,
// delete and update answer 404.
//
// One request at a time is the expected load; handlers do no coordination
// beyond what the store's per-call connections provide.
package server
