package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/standardbeagle/routelint/internal/debug"
	"github.com/standardbeagle/routelint/internal/mcp"

	"github.com/urfave/cli/v2"
)

func mcpCommand(c *cli.Context) error {
	// Stdout belongs to the protocol from here on
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c, ".")
	if err != nil {
		return failure(err)
	}

	mcpServer, err := mcp.NewServer(cfg, nil)
	if err != nil {
		return failure(err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mcpServer.Shutdown(shutdownCtx)
	}()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		debug.LogMCP("Starting MCP server with stdio transport...\n")
		errChan <- mcpServer.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil && ctx.Err() == nil {
			return failure(fmt.Errorf("MCP server error: %w", err))
		}
		return nil
	case <-ctx.Done():
		debug.LogMCP("Received shutdown signal, stopping MCP server\n")
	}

	// The stdio transport only notices cancellation between messages
	select {
	case <-errChan:
	case <-time.After(2 * time.Second):
		debug.LogMCP("Graceful shutdown timeout, closing stdin\n")
		os.Stdin.Close()
	}
	return nil
}
