package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rlerrors "github.com/standardbeagle/routelint/internal/errors"
	"github.com/standardbeagle/routelint/internal/lint"
)

// TestCreateJSONResponse tests the create JSON response.
func TestCreateJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
	}{
		{name: "simple map", data: map[string]interface{}{"status": "success", "count": 42}},
		{name: "finding", data: lint.Finding{Rule: lint.RuleNoURLs, Severity: lint.SeverityWarn}},
		{name: "string data", data: "simple string"},
		{name: "nil data", data: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := createJSONResponse(tt.data)
			require.NoError(t, err)
			require.Len(t, result.Content, 1)

			textContent, ok := result.Content[0].(*mcp.TextContent)
			require.True(t, ok, "createJSONResponse() did not return TextContent")

			var parsed interface{}
			assert.NoError(t, json.Unmarshal([]byte(textContent.Text), &parsed))
			assert.False(t, result.IsError)
		})
	}

	_, err := createJSONResponse(make(chan int))
	assert.Error(t, err)
}

// TestCreateErrorResponse tests the create error response.
func TestCreateErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		operation  string
		err        error
		suggestion string
	}{
		{
			name:      "plain error",
			operation: "lint_file",
			err:       errors.New("path is required"),
		},
		{
			name:       "config error",
			operation:  "list_routes",
			err:        rlerrors.NewConfigError("remix config", "", errors.New("unexpected token")).WithRoot("/app"),
			suggestion: "list_routes",
		},
		{
			name:       "outside an app",
			operation:  "check_path",
			err:        fmt.Errorf("/tmp/x.tsx: %w", lint.ErrNoAppContext),
			suggestion: "Remix app",
		},
		{
			name:       "file error",
			operation:  "lint_file",
			err:        rlerrors.NewFileError("read", "/nope.tsx", os.ErrNotExist),
			suggestion: "absolute path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := createErrorResponse(tt.operation, tt.err)
			require.NoError(t, err)
			assert.True(t, result.IsError, "tool errors must set IsError")

			textContent, ok := result.Content[0].(*mcp.TextContent)
			require.True(t, ok)

			var errorData struct {
				Success     bool     `json:"success"`
				Error       string   `json:"error"`
				Operation   string   `json:"operation"`
				Help        string   `json:"help"`
				Suggestions []string `json:"suggestions"`
			}
			require.NoError(t, json.Unmarshal([]byte(textContent.Text), &errorData))
			assert.False(t, errorData.Success)
			assert.Equal(t, tt.operation, errorData.Operation)
			assert.Equal(t, tt.err.Error(), errorData.Error)
			assert.NotEmpty(t, errorData.Help)
			if tt.suggestion == "" {
				assert.Empty(t, errorData.Suggestions)
			} else {
				assert.True(t, strings.Contains(strings.Join(errorData.Suggestions, "\n"), tt.suggestion), errorData.Suggestions)
			}
		})
	}
}

func TestDecodeParams(t *testing.T) {
	var p LintFileParams
	warnings, err := decodeParams([]byte(`{"path": "app", "verbose": true, "depth": 2}`), &p, "path", "format")
	require.NoError(t, err)
	assert.Equal(t, "app", p.Path)
	assert.Equal(t, []UnknownField{{Name: "depth", Value: float64(2)}, {Name: "verbose", Value: true}}, warnings)

	warnings, err = decodeParams(nil, &p, "path")
	assert.NoError(t, err)
	assert.Nil(t, warnings)

	_, err = decodeParams([]byte(`{"path": 3}`), &p, "path")
	assert.Error(t, err)
}

func TestDiagnosticLogger(t *testing.T) {
	dl := NewDiagnosticLogger(t.TempDir())
	dl.Printf("loaded %d routes", 3)
	dl.Errorf("broken %s", "config")
	path := dl.GetLogPath()
	require.NoError(t, dl.Close())
	dl.Printf("after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "loaded 3 routes")
	assert.Contains(t, string(data), "ERROR: broken config")
	assert.NotContains(t, string(data), "after close")

	var nilLogger *DiagnosticLogger
	nilLogger.Printf("ignored")
	assert.NoError(t, nilLogger.Close())
}
