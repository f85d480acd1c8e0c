// ABOUTME: Entry point for the waymark desktop backend daemon
// ABOUTME: Provisions the MCP helper and serves the local bookmark/validation API

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/waymark-app/waymark/internal/config"
	"github.com/waymark-app/waymark/internal/provision"
	"github.com/waymark-app/waymark/internal/server"
	"github.com/waymark-app/waymark/internal/store"
	"github.com/waymark-app/waymark/internal/workflowy"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
__      ____ _ _   _ _ __ ___   __ _ _ __| | __
\ \ /\ / / _' | | | | '_ ' _ \ / _' | '__| |/ /
 \ V  V / (_| | |_| | | | | | | (_| | |  |   <
  \_/\_/ \__,_|\__, |_| |_| |_|\__,_|_|  |_|\_\
               |___/
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: waymark-backend <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve               Start the backend daemon")
		fmt.Println("  init                Create a starter config file")
		fmt.Println("  health              Check daemon health")
		fmt.Println("  bookmarks           List bookmarks via a running daemon")
		fmt.Println("  validate-key KEY    Validate a Workflowy API key via a running daemon")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	case "bookmarks":
		err = runBookmarks(ctx)
	case "validate-key":
		err = runValidateKey(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file if present, otherwise runs on defaults.
// The desktop shell usually launches the daemon with no config at all.
func loadConfig() (*config.Config, error) {
	configPath := config.DefaultConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Data:      %s\n", cfg.Paths.DataDir)
	green.Print("    ▶ ")
	fmt.Printf("Resources: %s\n", cfg.Paths.ResourceDir)
	fmt.Println()

	logger.Info("starting waymark-backend",
		"http_addr", cfg.Server.HTTPAddr,
		"data_dir", cfg.Paths.DataDir,
	)

	// Install the bundled MCP helper. Failure is logged, never fatal: the
	// shell still launches, and whoever starts the helper later hits the
	// missing file then.
	if path, err := provision.InstallServer(cfg.Paths.DataDir, cfg.Paths.ResourceDir); err != nil {
		logger.Warn("failed to provision MCP server", "error", err)
	} else {
		logger.Info("MCP server provisioned", "path", path)
	}

	srv := server.New(server.Config{
		Addr:      cfg.Server.HTTPAddr,
		Store:     store.NewBookmarkStore(cfg.DatabasePath()),
		Workflowy: workflowy.NewClient(cfg.Workflowy.BaseURL),
		DataDir:   cfg.Paths.DataDir,
		Logger:    logger,
	})

	return srv.Run(ctx)
}

func runInit() error {
	configPath := config.DefaultConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists: %s", configPath)
	}

	cfg := config.Default()
	content := fmt.Sprintf(`# waymark-backend configuration
# Generated by waymark-backend init

server:
  http_addr: "%s"

paths:
  data_dir: "%s"
  resource_dir: "%s"

logging:
  level: "info"
  format: "text"
`, cfg.Server.HTTPAddr, cfg.Paths.DataDir, cfg.Paths.ResourceDir)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created config: %s\n", configPath)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runBookmarks(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/api/bookmarks", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("listing bookmarks failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("listing bookmarks: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var bookmarks []store.Bookmark
	if err := json.NewDecoder(resp.Body).Decode(&bookmarks); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if len(bookmarks) == 0 {
		fmt.Println("no bookmarks")
		return nil
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	for _, b := range bookmarks {
		cyan.Printf("%s", b.Name)
		gray.Printf("  %s", b.NodeID)
		if b.Context != nil {
			fmt.Printf("  %s", *b.Context)
		}
		fmt.Println()
	}
	return nil
}

func runValidateKey(ctx context.Context) error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: waymark-backend validate-key KEY")
	}
	key := os.Args[2]

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	body, err := json.Marshal(server.ValidateKeyRequest{APIKey: key})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("http://%s/api/validate-key", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("validation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("key rejected: %s", strings.TrimSpace(string(respBody)))
	}

	fmt.Println("valid")
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
