// Package version reports the routelint version and build.
package version

import (
	"crypto/sha256"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
)

// Version is the release version of routelint.
const Version = "0.3.0"

// Set with -ldflags "-X github.com/standardbeagle/routelint/internal/version.GitCommit=..."
var (
	GitCommit = ""
	BuildDate = ""
)

// Info returns the version string.
func Info() string {
	return Version
}

// FullInfo returns the version with the commit and build date, taken from
// the ldflags or, for `go install` builds, from the embedded VCS stamp.
func FullInfo() string {
	commit, date := GitCommit, BuildDate
	if commit == "" || date == "" {
		c, d, modified := vcsStamp()
		if commit == "" {
			commit = c
			if modified && c != "" {
				commit += "-dirty"
			}
		}
		if date == "" {
			date = d
		}
	}

	var extra []string
	if commit != "" {
		extra = append(extra, "commit "+commit)
	}
	if date != "" {
		extra = append(extra, "built "+date)
	}
	if len(extra) == 0 {
		return "routelint " + Version
	}
	return fmt.Sprintf("routelint %s (%s)", Version, strings.Join(extra, ", "))
}

func vcsStamp() (commit, date string, modified bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", false
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case "vcs.time":
			date = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	return commit, date, modified
}

var (
	buildID     string
	buildIDOnce sync.Once
)

// BuildID returns a fingerprint of the running binary. The MCP server
// reports it so clients can tell a stale server process apart.
func BuildID() string {
	buildIDOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			buildID = Version + "-" + GitCommit
			return
		}
		h := sha256.New()
		fmt.Fprintf(h, "%s\x00%s\x00%s", info.GoVersion, info.Main.Path, info.Main.Version)
		for _, s := range info.Settings {
			if strings.HasPrefix(s.Key, "vcs.") {
				fmt.Fprintf(h, "\x00%s=%s", s.Key, s.Value)
			}
		}
		buildID = fmt.Sprintf("%x", h.Sum(nil))[:16]
	})
	return buildID
}
