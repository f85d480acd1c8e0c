// Package provision installs the bundled MCP helper script.
//
// The desktop bundle ships the helper at _up_/dist-mcp/server.cjs inside
// the read-only resources directory. At startup the backend copies it to
// <data_dir>/server.cjs, always overwriting, so every upgrade installs the
// newest bundled version without any version comparison.
//
// Provisioning failures never block startup: the caller logs a warning and
// carries on, and ServerPath still hands out the destination path. A later
// attempt to launch the helper is where a missing file actually fails.
package provision
