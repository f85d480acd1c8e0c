// ABOUTME: Installs the bundled MCP helper script into the per-user data directory
// ABOUTME: Copies resources/_up_/dist-mcp/server.cjs to <data_dir>/server.cjs on startup

package provision

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ServerFileName is the installed helper script's filename, a fixed contract
// with whatever launches the helper later.
const ServerFileName = "server.cjs"

// bundledServerPath is where the packaging step places the helper inside the
// read-only resources directory.
var bundledServerPath = filepath.Join("_up_", "dist-mcp", ServerFileName)

// ServerPath returns where the helper script lives under dataDir. Pure path
// derivation: the file may not exist if provisioning failed or never ran.
func ServerPath(dataDir string) string {
	return filepath.Join(dataDir, ServerFileName)
}

// InstallServer copies the bundled helper script from resourceDir into
// dataDir, overwriting any previous copy, and returns the destination path.
//
// The overwrite is unconditional so an application upgrade always installs
// the freshest bundled version; no version comparison is done. A missing
// bundled script is not an error here: nothing is copied and the
// destination path is still returned. Callers that later launch the helper
// discover the absence at that point.
func InstallServer(dataDir, resourceDir string) (string, error) {
	source := filepath.Join(resourceDir, bundledServerPath)
	dest := ServerPath(dataDir)

	// Any stat failure reads as "not bundled", not just NotExist: nothing
	// is copied and the destination path is still handed out.
	if _, err := os.Stat(source); err != nil {
		slog.Debug("bundled MCP server not present, skipping copy", "source", source, "error", err)
		return dest, nil
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return dest, fmt.Errorf("creating data directory: %w", err)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return dest, fmt.Errorf("reading bundled server: %w", err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return dest, fmt.Errorf("copying server: %w", err)
	}

	return dest, nil
}
