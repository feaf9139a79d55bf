// Package mcp exposes the route linter to AI assistants over the Model
// Context Protocol on stdio.
package mcp

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/routelint/internal/config"
	"github.com/standardbeagle/routelint/internal/runner"
	"github.com/standardbeagle/routelint/internal/version"
)

// ServerName is reported to clients during initialization.
const ServerName = "routelint-mcp-server"

// Server serves the lint tools for one project configuration.
type Server struct {
	cfg              *config.Config
	runner           *runner.Runner
	server           *mcp.Server
	diagnosticLogger *DiagnosticLogger // file only, stdout belongs to the protocol
	started          time.Time
}

// NewServer creates a server for cfg. Route config warnings and server
// diagnostics go to logger; nil opens a log file in the temp directory.
func NewServer(cfg *config.Config, logger *DiagnosticLogger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mcp server needs a configuration")
	}
	if logger == nil {
		logger = NewDiagnosticLogger("")
	}

	s := &Server{
		cfg:              cfg,
		diagnosticLogger: logger,
		started:          time.Now(),
	}
	// route trees follow the files on disk for the life of the server
	s.runner = runner.New(cfg, runner.WithLogger(logger), runner.WithWatch())
	logger.Printf("MCP server initialized for %s (config: %v)", cfg.Project.Root, cfg.Sources)

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Server version, the active lint configuration, and help for the other tools.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {
					Type:        "string",
					Description: "Tool to get help for: lint_file, check_path or list_routes",
				},
			},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "lint_file",
		Description: "Check the <Link to>, <NavLink to>, <Form action> and <a href> values of a Remix source file or directory against the app's routes.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "File or directory, absolute or relative to the project root",
				},
				"format": {
					Type:        "string",
					Description: "Output format",
					Enum:        []any{"json", "text", "compact"},
				},
			},
			Required: []string{"path"},
		},
	}, s.handleLintFile)

	s.server.AddTool(&mcp.Tool{
		Name:        "check_path",
		Description: "Resolve one route path and report whether any route of the app matches it, with a suggestion when it does not.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Route path, e.g. /users/42 or ../edit",
				},
				"file": {
					Type:        "string",
					Description: "Source file the path is written in; relative paths resolve against the route it renders",
				},
			},
			Required: []string{"path"},
		},
	}, s.handleCheckPath)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_routes",
		Description: "List the routes of the Remix app containing a directory, as a tree or a flat list of paths.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"dir": {
					Type:        "string",
					Description: "Directory inside the app, defaults to the project root",
				},
				"format": {
					Type:        "string",
					Description: "Output format",
					Enum:        []any{"json", "text", "compact"},
				},
				"reload": {
					Type:        "boolean",
					Description: "Read the route files again instead of using the cached tree",
				},
			},
		},
	}, s.handleListRoutes)
}

// recoverFromPanic keeps a panicking handler from taking the server down
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.diagnosticLogger.Errorf("PANIC RECOVERED in %s: %v\n%s", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err = handler()
	if err != nil {
		s.diagnosticLogger.Errorf("%s: %v", operation, err)
		return createSmartErrorResponse(operation, err, map[string]interface{}{
			"project_root": s.cfg.Project.Root,
			"timestamp":    time.Now().Format(time.RFC3339),
		})
	}
	return result, nil
}

// Start serves MCP on stdio until ctx is done or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown stops route watching and closes the diagnostic log.
func (s *Server) Shutdown(ctx context.Context) error {
	s.diagnosticLogger.Printf("Shutting down MCP server")
	err := s.runner.Close()
	if cerr := s.diagnosticLogger.Close(); err == nil {
		err = cerr
	}
	return err
}

// GetHandlerForTesting returns a handler function for testing purposes
func (s *Server) GetHandlerForTesting(toolName string) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch toolName {
	case "info":
		return s.handleInfo
	case "lint_file":
		return s.handleLintFile
	case "check_path":
		return s.handleCheckPath
	case "list_routes":
		return s.handleListRoutes
	default:
		return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return createErrorResponse("GetHandlerForTesting", fmt.Errorf("unknown tool: %s", toolName))
		}
	}
}
