package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	rlerrors "github.com/standardbeagle/routelint/internal/errors"
	"github.com/standardbeagle/routelint/internal/lint"
	"github.com/standardbeagle/routelint/internal/runner"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createTextResponse returns preformatted text, e.g. a rendered route tree
func createTextResponse(text string) (*mcp.CallToolResult, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil
}

// createErrorResponse creates a standardized error response for MCP tools
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	return createSmartErrorResponse(operation, err, nil)
}

// createSmartErrorResponse adds suggestions and help for the operation to
// the error response.
func createSmartErrorResponse(operation string, err error, context map[string]interface{}) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	if suggestions := generateErrorSuggestions(err); len(suggestions) > 0 {
		errorData["suggestions"] = suggestions
	}
	if help := getOperationHelp(operation); help != "" {
		errorData["help"] = help
	}
	if len(context) > 0 {
		errorData["context"] = context
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}

	// Tool errors go in the result with IsError set, not as protocol
	// errors, so the client model can see them and correct its call.
	response.IsError = true
	return response, nil
}

// generateErrorSuggestions maps the error taxonomy to next steps
func generateErrorSuggestions(err error) []string {
	var suggestions []string
	switch {
	case errors.Is(err, runner.ErrNoProject), errors.Is(err, lint.ErrNoAppContext):
		suggestions = append(suggestions,
			"Pass a file or directory inside a Remix app (one with remix.config.js or a Vite config using @remix-run/dev)")
	case rlerrors.IsConfigError(err):
		suggestions = append(suggestions,
			"The app's route configuration could not be loaded; check remix.config.js and the routes directory",
			"Use list_routes to see which routes are found")
	case rlerrors.IsInternalError(err):
		suggestions = append(suggestions, "This is a bug in routelint; please report the path that triggered it")
	}

	var fileErr *rlerrors.FileError
	if errors.As(err, &fileErr) {
		suggestions = append(suggestions, "Paths are resolved against the project root; pass an absolute path if unsure")
	}
	return suggestions
}

// getOperationHelp provides helpful information about each operation
func getOperationHelp(operation string) string {
	helpMap := map[string]string{
		"lint_file":   `Lint a file or directory: {"path": "app/routes/index.tsx"}. Optional "format": "json" (default), "text" or "compact".`,
		"check_path":  `Validate one route path: {"path": "/users/42"}. Add "file" to resolve relative paths against the route that file renders.`,
		"list_routes": `List the app's routes: {"dir": "."}. Optional "format": "json" (default), "text" or "compact".`,
	}
	return helpMap[operation]
}
