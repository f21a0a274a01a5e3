package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hpungsan/clipstash/internal/config"
	"github.com/hpungsan/clipstash/internal/logging"
	"github.com/hpungsan/clipstash/internal/mcp"
	"github.com/hpungsan/clipstash/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"watch": true, "serve": true, "mcp": true,
	"add": true, "search": true, "list": true, "folders": true,
	"get": true, "count": true, "pin": true, "unpin": true,
	"move": true, "delete": true, "copy": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	// Global flags may precede the subcommand, e.g. --log-level debug watch
	for _, a := range os.Args[1:] {
		if cliCommands[a] {
			return true
		}
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
        _ _           _            _
    ___| (_)_ __  ___| |_ __ _ ___| |__
   / __| | | '_ \/ __| __/ _' / __| '_ \
  | (__| | | |_) \__ \ || (_| \__ \ | | |
   \___|_|_| .__/|___/\__\__,_|___/_| |_|
           |_|

  Searchable clipboard history

  Usage: clipstash <command> [options]
         clipstash watch --serve
         clipstash --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before config and store setup
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".clipstash")

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	e := newEnv(baseDir, cfg)
	// The store is opened on first use and shared by every entry point.
	defer e.stores.Close()

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(e)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			e.stores.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'clipstash --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default). Logs go to stderr; stdout carries the protocol.
	logging.Setup(cfg.LogFormat, cfg.LogLevel)
	warnUnknownTools(cfg)
	if err := mcp.Run(e.stores, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		e.stores.Close()
		os.Exit(1)
	}
}

// warnUnknownTools logs disabled_tools entries that name no MCP tool.
func warnUnknownTools(cfg *config.Config) {
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		slog.Warn("unknown tools in disabled_tools", "tools", unknown, "valid", mcp.AllToolNames())
	}
}

// newStores returns the process-wide lazily opened store for baseDir.
func newStores(baseDir string, cfg *config.Config) *store.Lazy {
	return store.NewLazy(func() (*store.Store, error) {
		return store.Open(baseDir, store.Options{Config: cfg})
	})
}
