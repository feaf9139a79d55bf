package config

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/routelint/internal/debug"
	"github.com/standardbeagle/routelint/internal/jsx"
	"github.com/standardbeagle/routelint/pkg/pathutil"
)

// FileScanner finds the source files to lint below the project root.
type FileScanner struct {
	config          *Config
	gitignoreParser *GitignoreParser
}

// NewFileScanner creates a scanner for cfg, loading the project's
// .gitignore when RespectGitignore is set.
func NewFileScanner(cfg *Config) *FileScanner {
	sc := &FileScanner{config: cfg}
	if cfg.RespectGitignore {
		gp := NewGitignoreParser()
		if err := gp.LoadGitignore(cfg.Project.Root); err != nil {
			debug.Printf("cannot read .gitignore in %s: %v\n", cfg.Project.Root, err)
		} else {
			sc.gitignoreParser = gp
		}
	}
	return sc
}

// Scan returns the lintable files under paths, sorted. Directories are
// walked with the include and exclude patterns applied; files named
// directly are only checked for a supported extension. An empty paths
// scans the project root.
func (s *FileScanner) Scan(ctx context.Context, paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{s.config.Project.Root}
	}
	seen := make(map[string]bool)
	visitedDirs := make(map[string]bool)
	var out []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, newConfigError("paths", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, newConfigError("paths", p, err)
		}
		if !info.IsDir() {
			if jsx.Supported(abs) {
				add(abs)
			}
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				debug.Printf("scanner error for %s: %v\n", path, err)
				return nil
			}
			rel := s.relative(path)
			if d.IsDir() {
				if path == abs {
					return nil
				}
				// Check for symlink cycles
				resolved, err := filepath.EvalSymlinks(path)
				if err != nil || visitedDirs[resolved] {
					return filepath.SkipDir
				}
				visitedDirs[resolved] = true
				if s.excludedDir(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if s.shouldProcessFile(path, rel) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *FileScanner) relative(path string) string {
	rel, err := filepath.Rel(s.config.Project.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// excludedDir prunes a directory when everything inside it is excluded.
func (s *FileScanner) excludedDir(rel string) bool {
	probe := rel + "/_"
	for _, pattern := range s.config.Exclude {
		if matched, err := doublestar.Match(pattern, probe); err == nil && matched {
			return true
		}
	}
	return s.gitignoreParser != nil && s.gitignoreParser.ShouldIgnore(rel, true)
}

// Oversized and generated files are still returned; the runner screens them
// and reports them as file errors.
func (s *FileScanner) shouldProcessFile(path, rel string) bool {
	if !jsx.Supported(path) || !s.Matches(rel) {
		return false
	}
	return s.gitignoreParser == nil || !s.gitignoreParser.ShouldIgnore(rel, false)
}

// Accepts reports whether an absolute file path would be picked up by a
// scan of the project root. Watch mode uses it to filter file events.
func (s *FileScanner) Accepts(path string) bool {
	rel, ok := pathutil.SlashRel(path, s.config.Project.Root)
	if !ok || !jsx.Supported(path) || !s.Matches(rel) {
		return false
	}
	return s.gitignoreParser == nil || !s.gitignoreParser.ShouldIgnore(rel, false)
}

// WatchExcludes returns the directory patterns a watcher should skip: the
// configured excludes plus the .gitignore entries.
func (s *FileScanner) WatchExcludes() []string {
	out := append([]string(nil), s.config.Exclude...)
	if s.gitignoreParser != nil {
		out = append(out, s.gitignoreParser.GetExclusionPatterns()...)
	}
	return out
}

// Matches applies the include and exclude patterns to a path relative to
// the project root.
func (s *FileScanner) Matches(rel string) bool {
	for _, pattern := range s.config.Exclude {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return false
		}
	}
	if len(s.config.Include) == 0 {
		return true
	}
	for _, pattern := range s.config.Include {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}
