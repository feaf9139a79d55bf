// Package pathutil converts between the absolute paths used internally and
// the relative, slash separated paths used by route files and user output.
//
// Route trees record files relative to the app directory with forward
// slashes regardless of platform. Findings and CLI output show paths
// relative to the working directory or project root.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/app/app/root.tsx", "/home/user/app") → "app/root.tsx"
//   - ToRelative("/other/location/file.tsx", "/home/user/app") → "/other/location/file.tsx" (outside root)
//   - ToRelative("app/root.tsx", "/home/user/app") → "app/root.tsx" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	rel, ok := relInside(absPath, rootDir)
	if !ok {
		return filepath.Clean(absPath)
	}
	return rel
}

// SlashRel returns path relative to root with forward slashes. The second
// result is false when path is not inside root.
func SlashRel(path, root string) (string, bool) {
	rel, ok := relInside(path, root)
	if !ok {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// HasDirPrefix reports whether path equals dir or lies beneath it. Unlike
// strings.HasPrefix it respects separator boundaries, so "/app-old" is not
// under "/app".
func HasDirPrefix(path, dir string) bool {
	path = filepath.Clean(path)
	dir = filepath.Clean(dir)
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}

func relInside(path, root string) (string, bool) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		// different volumes on Windows
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
