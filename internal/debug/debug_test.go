package debug

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saveAndRestoreState saves the debug package state and returns a cleanup function
func saveAndRestoreState(t *testing.T) func() {
	t.Setenv("DEBUG", "")
	t.Setenv("ROUTELINT_DEBUG", "")
	originalDebug := EnableDebug
	originalMode := MCPMode
	originalOutput := output
	originalFile := logFile
	return func() {
		EnableDebug = originalDebug
		MCPMode = originalMode
		output = originalOutput
		logFile = originalFile
	}
}

func TestIsDebugEnabled(t *testing.T) {
	defer saveAndRestoreState(t)()

	EnableDebug = "false"
	assert.False(t, IsDebugEnabled())

	EnableDebug = "true"
	assert.True(t, IsDebugEnabled())

	SetMCPMode(true)
	assert.False(t, IsDebugEnabled(), "MCP mode always wins")
	SetMCPMode(false)

	EnableDebug = "false"
	t.Setenv("ROUTELINT_DEBUG", "1")
	assert.True(t, IsDebugEnabled())

	t.Setenv("ROUTELINT_DEBUG", "false")
	assert.False(t, IsDebugEnabled())
}

func TestEnabledComponents(t *testing.T) {
	defer saveAndRestoreState(t)()
	EnableDebug = "false"

	t.Setenv("ROUTELINT_DEBUG", "routes, Watch")
	assert.True(t, IsDebugEnabled())
	assert.True(t, Enabled(ComponentRoutes))
	assert.True(t, Enabled(ComponentWatch))
	assert.False(t, Enabled(ComponentLint))

	t.Setenv("ROUTELINT_DEBUG", "all")
	assert.True(t, Enabled(ComponentLint))
}

func TestLogComponents(t *testing.T) {
	defer saveAndRestoreState(t)()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	t.Setenv("ROUTELINT_DEBUG", "routes,lint")

	LogRoutes("loaded %d routes\n", 3)
	LogLint("checking %s\n", "app/root.tsx")
	LogWatch("event %s\n", "write")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG:ROUTES] loaded 3 routes")
	assert.Contains(t, out, "[DEBUG:LINT] checking app/root.tsx")
	assert.NotContains(t, out, "WATCH")
}

func TestLogSuppressed(t *testing.T) {
	defer saveAndRestoreState(t)()

	var buf bytes.Buffer
	SetDebugOutput(&buf)

	EnableDebug = "false"
	Printf("hidden\n")
	assert.Empty(t, buf.String())

	EnableDebug = "true"
	SetMCPMode(true)
	Log(ComponentMCP, "hidden\n")
	Printf("hidden\n")
	assert.Empty(t, buf.String())
}

func TestDebugLogFile(t *testing.T) {
	defer saveAndRestoreState(t)()
	EnableDebug = "true"

	path, err := InitDebugLogFile()
	require.NoError(t, err)
	defer os.Remove(path)

	LogWatch("event %s\n", "create")
	require.NoError(t, CloseDebugLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG:WATCH] event create")

	assert.NoError(t, CloseDebugLog(), "closing twice is a no-op")
}
