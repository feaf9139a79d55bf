package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser matches paths against the patterns of a project's
// top-level .gitignore. Nested .gitignore files are not read.
type GitignoreParser struct {
	patterns []GitignorePattern
}

type GitignorePattern struct {
	Pattern   string // doublestar pattern relative to the project root
	Negate    bool
	Directory bool // only matches directories (and everything inside them)
}

// NewGitignoreParser creates a new gitignore parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file
// is fine.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		gp.AddPattern(scanner.Text())
	}
	return scanner.Err()
}

// AddPattern adds one .gitignore line. Blank lines and comments are skipped.
func (gp *GitignoreParser) AddPattern(line string) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	var p GitignorePattern
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	} else if strings.HasPrefix(line, `\`) {
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if line == "" {
		return
	}

	// a slash anywhere but the end anchors the pattern to the root
	if strings.Contains(line, "/") {
		p.Pattern = strings.TrimPrefix(line, "/")
	} else {
		p.Pattern = "**/" + line
	}
	gp.patterns = append(gp.patterns, p)
}

// ShouldIgnore reports whether the slash-separated path relative to the
// root is ignored. Later patterns override earlier ones.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	ignored := false
	for _, p := range gp.patterns {
		if gp.matchesPattern(p, path, isDir) {
			ignored = !p.Negate
		}
	}
	return ignored
}

func (gp *GitignoreParser) matchesPattern(p GitignorePattern, path string, isDir bool) bool {
	if (!p.Directory || isDir) && match(p.Pattern, path) {
		return true
	}
	// anything inside an ignored directory
	return match(p.Pattern+"/**", path)
}

func match(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}

// GetExclusionPatterns converts the non-negated patterns into exclude
// globs for directory walks.
func (gp *GitignoreParser) GetExclusionPatterns() []string {
	var out []string
	for _, p := range gp.patterns {
		if p.Negate {
			continue
		}
		if p.Directory {
			out = append(out, p.Pattern+"/**")
		} else {
			out = append(out, p.Pattern, p.Pattern+"/**")
		}
	}
	return out
}
