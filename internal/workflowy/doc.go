// Package workflowy is a minimal client for the Workflowy API.
//
// The backend only needs one call: an authenticated GET against
// /api/v1/targets to prove an API key works. Keys are trimmed before use
// because they arrive pasted from a browser.
//
// Two failure shapes cross the boundary:
//
//   - *APIError: the endpoint answered non-2xx (invalid or expired key);
//     carries the status code and response body for display
//   - transport errors: DNS, TLS, timeout; wrapped and returned as-is
//
// No retries, no caching of results, no timeout beyond the transport
// defaults.
package workflowy
