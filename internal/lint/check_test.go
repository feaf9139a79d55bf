package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rlerrors "github.com/standardbeagle/routelint/internal/errors"
)

func TestCheckPath(t *testing.T) {
	l := newLinter(t)

	tests := []struct {
		name       string
		file       string
		path       string
		valid      bool
		resolved   string
		reason     bool
		suggestion string
	}{
		{name: "absolute", file: component, path: "/foo/bar?tab=1", valid: true, resolved: "/foo/bar"},
		{name: "param", file: component, path: "/foo/42", valid: true, resolved: "/foo/42"},
		{name: "relative in route", file: barRoute, path: "../", valid: true, resolved: "/foo"},
		{name: "typo", file: component, path: "/fooo/bar", resolved: "/fooo/bar", suggestion: "/foo/bar"},
		{name: "relative outside route", file: component, path: "foo", reason: true},
		{name: "url", file: component, path: "https://remix.run", reason: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc, err := l.CheckPath(tt.file, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, pc.Valid)
			assert.Equal(t, tt.resolved, pc.Resolved)
			assert.Equal(t, tt.reason, pc.Reason != "")
			assert.Equal(t, tt.suggestion, pc.Suggestion)
		})
	}

	pc, err := l.CheckPath(barRoute, ".")
	require.NoError(t, err)
	assert.Equal(t, "/foo/bar", pc.CurrentRoute)
}

func TestCheckPathWithoutApp(t *testing.T) {
	l := newLinter(t)

	_, err := l.CheckPath(otherProj, "/foo")
	assert.ErrorIs(t, err, ErrNoAppContext)

	_, err = l.CheckPath(brokenProj, "/foo")
	assert.True(t, rlerrors.IsConfigError(err))
}
