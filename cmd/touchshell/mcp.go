package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/touchshell/touchshell/internal/config"
	"github.com/touchshell/touchshell/internal/ipc"
	"github.com/touchshell/touchshell/internal/logging"
	"github.com/touchshell/touchshell/internal/mcp"
)

const mcpUsage = `Usage: touchshell mcp serve [--socket PATH]

Serve the daemon's introspection tools over MCP on stdio.`

func runMCP(args []string) int {
	switch {
	case len(args) == 0:
		fmt.Fprintln(os.Stderr, mcpUsage)
		return 2
	case args[0] == "serve":
		return runMCPServe(args[1:])
	case args[0] == "help" || args[0] == "-h" || args[0] == "--help":
		fmt.Println(mcpUsage)
		return 0
	}
	fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n%s\n", args[0], mcpUsage)
	return 2
}

func runMCPServe(args []string) int {
	fs := newFlagSet("serve",
		"Usage: touchshell mcp serve [--socket PATH]",
		"Tools: shell_status, list_spaces, reload_config, replay_script.")
	socket := fs.String("socket", "", "IPC socket path (default: from config)")
	if rc := parseFlags(fs, args); rc >= 0 {
		return rc
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *socket == "" {
		*socket = cfg.IPC.Socket
	}

	// stdout carries the protocol, so logs always go to stderr or the file.
	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcp.NewServer(ipc.NewClientForSocket(*socket), logger).Run(ctx); err != nil {
		logger.Error("MCP server stopped", "error", err)
		return 1
	}
	return 0
}
