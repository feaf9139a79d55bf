package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/routelint/internal/debug"
	"github.com/standardbeagle/routelint/internal/lint"
	"github.com/standardbeagle/routelint/internal/version"
	"github.com/standardbeagle/routelint/testhelpers"
)

const navModule = `import { Link } from "@remix-run/react";

export function Nav() {
  return (
    <nav>
      <Link to="/about">About</Link>
      <Link to="/pricing">Pricing</Link>
    </nav>
  );
}
`

// setupTestProject builds a v1 app with one broken link in a component.
func setupTestProject(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return testhelpers.NewAppBuilder(testhelpers.RemixConfigV1).
		WithRoutes("index.tsx", "about.tsx", "users/$id.tsx").
		WithFile("app/components/Nav.tsx", navModule).
		Build(t)
}

// runCLI runs the app in-process and returns its output and exit code.
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp(&stdout, &stderr)
	err := app.Run(append([]string{"routelint"}, args...))

	code := 0
	if err != nil {
		code = exitFailure
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		stderr.WriteString(err.Error())
	}
	return stdout.String(), stderr.String(), code
}

func TestLintCommand(t *testing.T) {
	root := setupTestProject(t)

	stdout, _, code := runCLI(t, root)
	assert.Equal(t, exitFindings, code)
	assert.Contains(t, stdout, "app/components/Nav.tsx\n")
	assert.Contains(t, stdout, `No route matches "/pricing"`)
	assert.Contains(t, stdout, "require-valid-paths")
	assert.Contains(t, stdout, "1 problem (1 error, 0 warnings)")

	stdout, _, code = runCLI(t, "--format", "compact", "lint", filepath.Join(root, "app", "components"))
	assert.Equal(t, exitFindings, code)
	assert.True(t, strings.HasPrefix(stdout, "app/components/Nav.tsx:7:"), stdout)
	assert.Equal(t, 1, strings.Count(stdout, "\n"))

	stdout, _, code = runCLI(t, "lint", filepath.Join(root, "app", "routes"))
	assert.Equal(t, 0, code)
	assert.Equal(t, "No problems found in 3 files\n", stdout)
}

func TestLintCommandJSON(t *testing.T) {
	root := setupTestProject(t)

	stdout, _, code := runCLI(t, "--format", "json", "--jobs", "2", root)
	assert.Equal(t, exitFindings, code)

	var report lintReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 6, report.Files, "remix.config.js, root, three routes and Nav")
	require.Len(t, report.Findings, 1)
	assert.Equal(t, lint.KindInvalidPath, report.Findings[0].Kind)
	assert.Equal(t, lint.Summary{Errors: 1}, report.Summary)
}

func TestLintCommandRuleOverride(t *testing.T) {
	root := setupTestProject(t)
	testhelpers.WriteFile(t, filepath.Join(root, ".routelint.kdl"), `
rules {
    require-valid-paths "warn"
}
`)

	stdout, _, code := runCLI(t, root)
	assert.Equal(t, 0, code, "warnings do not fail the run")
	assert.Contains(t, stdout, "1 problem (0 errors, 1 warning)")
}

func TestLintCommandBadConfig(t *testing.T) {
	root := setupTestProject(t)

	_, stderr, code := runCLI(t, "--preset", "loose", root)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, `unknown preset "loose"`)

	_, stderr, code = runCLI(t, "--config", filepath.Join(root, "missing.kdl"), root)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "failed to load config")
}

func TestRoutesCommand(t *testing.T) {
	root := setupTestProject(t)

	stdout, _, code := runCLI(t, "--format", "compact", "routes", root)
	require.Equal(t, 0, code)
	assert.Equal(t, "/ /about /users/:id\n", stdout)

	stdout, _, code = runCLI(t, "routes", "--files", root)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Source: ")
	assert.Contains(t, stdout, "users/$id.tsx")

	_, stderr, code := runCLI(t, "routes", t.TempDir())
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "no Remix project found")
}

func TestCheckCommand(t *testing.T) {
	root := setupTestProject(t)

	stdout, _, code := runCLI(t, "--root", root, "check", "/users/42")
	assert.Equal(t, 0, code)
	assert.Equal(t, "/users/42: valid (/users/42)\n", stdout)

	stdout, _, code = runCLI(t, "--root", root, "check", "/abut")
	assert.Equal(t, exitFindings, code)
	assert.Contains(t, stdout, "no route matches /abut")
	assert.Contains(t, stdout, `did you mean "/about"?`)

	file := filepath.Join(root, "app", "routes", "users", "$id.tsx")
	stdout, _, code = runCLI(t, "--format", "json", "check", "--file", file, "../..")
	require.Equal(t, 0, code, stdout)
	var pc lint.PathCheck
	require.NoError(t, json.Unmarshal([]byte(stdout), &pc))
	assert.Equal(t, "/users/:id", pc.CurrentRoute)
	assert.Equal(t, "/", pc.Resolved)

	stdout, _, code = runCLI(t, "--root", root, "check", "https://remix.run")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "not checked")

	_, _, code = runCLI(t, "--root", root, "check")
	assert.Equal(t, exitFailure, code)
}

func TestGlobalFlags(t *testing.T) {
	stdout, _, code := runCLI(t, "--help")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "--verbose, -V")
	assert.Contains(t, stdout, "--version, -v")

	stdout, _, code = runCLI(t, "-v")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, version.Version)

	enabled := debug.EnableDebug
	t.Cleanup(func() {
		debug.EnableDebug = enabled
		debug.SetDebugOutput(nil)
	})
	root := setupTestProject(t)
	_, stderr, code := runCLI(t, "-V", "--root", root, "config", "show")
	require.Equal(t, 0, code)
	assert.Equal(t, "true", debug.EnableDebug)
	assert.NotContains(t, stderr, "panic")
}

func TestConfigShowCommand(t *testing.T) {
	root := setupTestProject(t)

	stdout, _, code := runCLI(t, "--root", root, "--strict", "config", "show")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Root:               "+root)
	assert.Contains(t, stdout, "(defaults)")
	assert.Contains(t, stdout, "Strict mode:                 true")
	assert.Contains(t, stdout, "no-urls              error")
}
