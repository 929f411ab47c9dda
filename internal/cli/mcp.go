package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/kinema/pkg/adapters/mcp"
)

// MCPOptions configures the mcp command.
type MCPOptions struct {
	ServeOptions

	// Transport is stdio or sse.
	Transport string
	Port      int
}

// ServeMCP exposes the sessions of one animation as MCP tools. Logs go to
// stderr so that stdio stays a clean JSON-RPC channel.
func ServeMCP(ctx context.Context, opts MCPOptions) error {
	logger := serverLogger(opts.RunOptions)

	services, err := NewServices(opts.ServeOptions, logger, nil)
	if err != nil {
		return err
	}
	defer services.Close()

	driveCtx, stopDriving := context.WithCancel(ctx)
	defer stopDriving()
	go services.HTTP.Drive(driveCtx, opts.FPS)

	srv := mcp.NewServer(services.HTTP, mcp.WithLogger(logger))
	switch opts.Transport {
	case "", "stdio":
		logger.Info("Starting MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting MCP server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(ctx, opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP server stopped gracefully")
		return nil
	}
	return fmt.Errorf("unknown transport %q, supported: stdio, sse", opts.Transport)
}
