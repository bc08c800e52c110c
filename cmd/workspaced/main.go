package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/lumiador/Workspace-Extension/internal/bridge"
	"github.com/lumiador/Workspace-Extension/internal/config"
	"github.com/lumiador/Workspace-Extension/internal/engine"
	"github.com/lumiador/Workspace-Extension/internal/mcp"
	"github.com/lumiador/Workspace-Extension/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"list": true, "create": true, "open": true, "delete": true,
	"rename": true, "pin": true, "archive": true, "move": true,
	"current": true, "settings": true, "usage": true,
	"export": true, "import": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
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
                      _
 __ __ _____ _ _ _ __| |
 \ V  V / _ \ '_| / /  _|
  \_/\_/\___/_| |_\_\\__|  workspaced

  Browser workspace state synchronization engine

  Usage: workspaced <command> [options]
         workspaced --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before any state is opened
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
	baseDir := filepath.Join(homeDir, ".workspaced")

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr: stdout belongs to the MCP stdio transport.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	st, err := store.Open(cfg.StoreDSN, baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	br := bridge.New(logger)
	eng := engine.New(engine.Options{
		Store:    st,
		Host:     br,
		Logger:   logger,
		Notifier: br,
		Debounce: cfg.Debounce(),
	})
	br.SetSink(eng)
	defer br.Close()

	if err := eng.Init(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize engine: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("ignoring unknown disabled tools", "tools", unknown)
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(eng)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'workspaced --help' for usage.\n")
		os.Exit(1)
	}

	// Bridge server for the browser extension and UI event subscribers.
	if cfg.ListenAddr != "" {
		mux := http.NewServeMux()
		br.Routes(mux, Version)
		go func() {
			logger.Info("bridge listening", "addr", cfg.ListenAddr)
			if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
				logger.Error("bridge server failed", "err", err)
			}
		}()
	}

	// MCP server mode (default)
	if err := mcp.Run(eng, cfg.DisabledTools, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
