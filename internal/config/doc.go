// Package config handles configuration loading for waymark-backend.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. Everything has a sensible default; a config file is only
// needed to override.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from WAYMARK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/waymark/backend.yaml
//  3. ~/.config/waymark/backend.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	paths:
//	  data_dir: "${WAYMARK_DATA_DIR}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "127.0.0.1:7767"  # local API for the desktop shell
//
// Host directories (passed explicitly into components, never read as
// ambient globals):
//
//	paths:
//	  data_dir: "~/.local/share/waymark"   # bookmarks.db, server.cjs
//	  resource_dir: "/opt/waymark/resources"
//
// Workflowy endpoint (override for tests only):
//
//	workflowy:
//	  base_url: "https://workflowy.com"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Defaults
//
// data_dir resolves via XDG ($XDG_DATA_HOME/waymark, falling back to
// ~/.local/share/waymark); resource_dir resolves relative to the running
// executable, matching the desktop bundle layout.
package config
