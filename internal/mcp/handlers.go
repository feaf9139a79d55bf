package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/routelint/internal/display"
	"github.com/standardbeagle/routelint/internal/lint"
	"github.com/standardbeagle/routelint/internal/version"
)

// InfoParams selects the tool to describe.
type InfoParams struct {
	Tool string `json:"tool"`
}

// LintFileParams are the arguments of lint_file.
type LintFileParams struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

// CheckPathParams are the arguments of check_path.
type CheckPathParams struct {
	Path string `json:"path"`
	File string `json:"file"`
}

// ListRoutesParams are the arguments of list_routes.
type ListRoutesParams struct {
	Dir    string `json:"dir"`
	Format string `json:"format"`
	Reload bool   `json:"reload"`
}

// LintFileResponse is the JSON form of a lint_file result.
type LintFileResponse struct {
	Files      int            `json:"files"`
	Findings   []lint.Finding `json:"findings"`
	Summary    lint.Summary   `json:"summary"`
	FileErrors []string       `json:"file_errors,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	Warnings   []UnknownField `json:"warnings,omitempty"`
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params InfoParams
	if _, err := decodeParams(req.Params.Arguments, &params, "tool"); err != nil {
		return createErrorResponse("info", fmt.Errorf("invalid parameters: %w", err))
	}

	tool := strings.ToLower(strings.TrimSpace(params.Tool))
	if tool != "" && tool != "version" {
		help := getOperationHelp(tool)
		if help == "" {
			return createErrorResponse("info", fmt.Errorf("unknown tool %q", params.Tool))
		}
		return createJSONResponse(map[string]interface{}{"name": tool, "help": help})
	}

	return createJSONResponse(map[string]interface{}{
		"server_name":    ServerName,
		"server_version": version.FullInfo(),
		"build_id":       version.BuildID(),
		"go_version":     runtime.Version(),
		"uptime":         time.Since(s.started).Round(time.Second).String(),
		"project_root":   s.cfg.Project.Root,
		"config_files":   s.cfg.Sources,
		"preset":         s.cfg.Preset,
		"settings":       s.cfg.Settings,
		"rules":          s.cfg.Rules,
		"tools":          []string{"lint_file", "check_path", "list_routes"},
	})
}

func (s *Server) handleLintFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("lint_file", func() (*mcp.CallToolResult, error) {
		var params LintFileParams
		warnings, err := decodeParams(req.Params.Arguments, &params, "path", "format")
		if err != nil {
			return createErrorResponse("lint_file", fmt.Errorf("invalid parameters: %w", err))
		}
		if params.Path == "" {
			return createErrorResponse("lint_file", fmt.Errorf("path is required"))
		}

		res, err := s.runner.Lint(ctx, s.resolve(params.Path))
		if err != nil {
			return nil, err
		}

		switch params.Format {
		case "text", "compact":
			formatter := display.NewFindingsFormatter(display.FormatterOptions{
				Format:  params.Format,
				BaseDir: s.cfg.Project.Root,
			})
			text := formatter.Format(res.Findings)
			if text == "" {
				text = fmt.Sprintf("%s in %d files\n", display.SummaryLine(res.Summary), res.Files)
			}
			return createTextResponse(text)
		}

		resp := LintFileResponse{
			Files:      res.Files,
			Findings:   res.Findings,
			Summary:    res.Summary,
			DurationMs: res.Duration.Milliseconds(),
			Warnings:   warnings,
		}
		if resp.Findings == nil {
			resp.Findings = []lint.Finding{}
		}
		for _, ferr := range res.FileErrors {
			resp.FileErrors = append(resp.FileErrors, ferr.Error())
		}
		return createJSONResponse(resp)
	})
}

func (s *Server) handleCheckPath(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("check_path", func() (*mcp.CallToolResult, error) {
		var params CheckPathParams
		if _, err := decodeParams(req.Params.Arguments, &params, "path", "file"); err != nil {
			return createErrorResponse("check_path", fmt.Errorf("invalid parameters: %w", err))
		}
		if params.Path == "" {
			return createErrorResponse("check_path", fmt.Errorf("path is required"))
		}

		file := params.File
		if file != "" {
			file = s.resolve(file)
		}
		pc, err := s.runner.Check(s.cfg.Project.Root, file, params.Path)
		if err != nil {
			return nil, err
		}
		return createJSONResponse(pc)
	})
}

func (s *Server) handleListRoutes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("list_routes", func() (*mcp.CallToolResult, error) {
		var params ListRoutesParams
		if _, err := decodeParams(req.Params.Arguments, &params, "dir", "format", "reload"); err != nil {
			return createErrorResponse("list_routes", fmt.Errorf("invalid parameters: %w", err))
		}
		if params.Reload {
			s.runner.Reload()
		}
		dir := s.cfg.Project.Root
		if params.Dir != "" {
			dir = s.resolve(params.Dir)
		}

		tree, err := s.runner.Routes(dir)
		if err != nil {
			return nil, err
		}
		format := params.Format
		if format == "" {
			format = "json"
		}
		formatter := display.NewTreeFormatter(display.FormatterOptions{
			Format:    format,
			ShowFiles: true,
			BaseDir:   s.cfg.Project.Root,
		})
		return createTextResponse(formatter.Format(tree))
	})
}

// resolve makes a tool path absolute against the project root.
func (s *Server) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.cfg.Project.Root, p)
}
