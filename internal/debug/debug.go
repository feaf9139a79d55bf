// Package debug writes developer diagnostics. Output is off unless the
// EnableDebug build flag or the ROUTELINT_DEBUG environment variable turns
// it on, and it is never written in MCP mode.
//
// ROUTELINT_DEBUG (or DEBUG) accepts "1", "true" or "all" for every
// component, or a comma-separated list such as "routes,watch".
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/routelint/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode tracks if we're running as an MCP server (set by main)
var MCPMode = false

// Components accepted in ROUTELINT_DEBUG.
const (
	ComponentRoutes = "ROUTES"
	ComponentLint   = "LINT"
	ComponentWatch  = "WATCH"
	ComponentMCP    = "MCP"
	ComponentJSX    = "JSX"
)

var (
	mu      sync.Mutex
	output  io.Writer
	logFile *os.File
)

// SetMCPMode enables MCP mode which suppresses all debug output to stdio
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput sets the writer for debug output. nil disables output.
func SetDebugOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// InitDebugLogFile sends debug output to a new timestamped file in the
// temp directory and returns its path. Call CloseDebugLog when done.
func InitDebugLogFile() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Join(os.TempDir(), "routelint-debug-logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("debug-%s-%d.log", time.Now().Format("2006-01-02T150405"), os.Getpid()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}
	logFile = f
	output = f
	return path, nil
}

// CloseDebugLog closes the file opened by InitDebugLogFile, if any.
func CloseDebugLog() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	output = nil
	return err
}

// IsDebugEnabled reports whether any component logs.
func IsDebugEnabled() bool {
	return Enabled("")
}

// Enabled reports whether component logs. The empty component asks whether
// anything is enabled at all.
func Enabled(component string) bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	for _, name := range []string{"ROUTELINT_DEBUG", "DEBUG"} {
		v := strings.TrimSpace(os.Getenv(name))
		switch strings.ToLower(v) {
		case "", "0", "false":
			continue
		case "1", "true", "all":
			return true
		}
		if component == "" {
			return true
		}
		for _, c := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(c), component) {
				return true
			}
		}
	}
	return false
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// Printf writes an untagged message when any component is enabled.
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[DEBUG] "+format, args...)
	}
}

// Log writes a message tagged with component.
func Log(component, format string, args ...interface{}) {
	if !Enabled(component) {
		return
	}
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
	}
}

// LogRoutes logs route config loading and cache activity
func LogRoutes(format string, args ...interface{}) {
	Log(ComponentRoutes, format, args...)
}

// LogLint logs per-file validation decisions
func LogLint(format string, args ...interface{}) {
	Log(ComponentLint, format, args...)
}

// LogWatch logs file-system watcher activity
func LogWatch(format string, args ...interface{}) {
	Log(ComponentWatch, format, args...)
}

// LogMCP provides debug logging specifically for MCP operations
func LogMCP(format string, args ...interface{}) {
	Log(ComponentMCP, format, args...)
}
