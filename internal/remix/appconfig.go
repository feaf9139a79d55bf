package remix

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/routelint/internal/debug"
)

// Route file conventions.
const (
	ConventionV1       = "v1"
	ConventionV2       = "v2"
	ConventionManifest = "manifest"
)

// DefaultAppDirectory is used when the config does not set appDirectory.
const DefaultAppDirectory = "app"

// AppConfig is the part of a Remix config that decides where routes live.
type AppConfig struct {
	// File is the config file the values were read from.
	File string
	// AppDirectory is relative to the project root.
	AppDirectory string
	// IgnoredRouteFiles are glob patterns for files in the routes
	// directory that are not routes.
	IgnoredRouteFiles []string
	// Convention is ConventionV1 or ConventionV2.
	Convention string
	// CustomRoutes is set when the config defines a routes() function.
	// Those routes cannot be known without running the config.
	CustomRoutes bool
	// RemixVersion is the @remix-run/dev version from package.json, when
	// it could be determined.
	RemixVersion *semver.Version
	// BuildDirectories are the compiler output directories named in the
	// config, relative to the project root with forward slashes.
	BuildDirectories []string
}

// ReadAppConfig reads the Remix config in root. The config is parsed, not
// executed, so only literal values are understood.
func ReadAppConfig(root string) (*AppConfig, error) {
	file, ok := ConfigFile(root)
	if !ok {
		return nil, fmt.Errorf("no Remix config in %s", root)
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	cfg := &AppConfig{File: file, AppDirectory: DefaultAppDirectory}
	v2Flag, err := scanConfig(file, content, cfg)
	if err != nil {
		return nil, err
	}

	cfg.RemixVersion = remixVersion(root)
	isVite := strings.HasPrefix(filepath.Base(file), "vite.config.")
	switch {
	case v2Flag != nil && *v2Flag:
		cfg.Convention = ConventionV2
	case v2Flag != nil:
		cfg.Convention = ConventionV1
	case isVite:
		cfg.Convention = ConventionV2
	case cfg.RemixVersion != nil && cfg.RemixVersion.Major() >= 2:
		cfg.Convention = ConventionV2
	default:
		cfg.Convention = ConventionV1
	}
	debug.LogRoutes("config %s: appDirectory=%s convention=%s ignored=%v\n",
		file, cfg.AppDirectory, cfg.Convention, cfg.IgnoredRouteFiles)
	return cfg, nil
}

// scanConfig walks the syntax tree of a config file and picks up the
// literal values of the keys it knows. It returns the value of the
// v2_routeConvention future flag when present.
func scanConfig(file string, content []byte, cfg *AppConfig) (*bool, error) {
	ptr := tree_sitter_javascript.Language()
	switch filepath.Ext(file) {
	case ".ts", ".mts":
		ptr = tree_sitter_typescript.LanguageTypescript()
	}
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(tree_sitter.NewLanguage(ptr)); err != nil {
		return nil, fmt.Errorf("set tree-sitter language: %w", err)
	}
	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s: no syntax tree", file)
	}
	defer tree.Close()

	text := func(n *tree_sitter.Node) string {
		return string(content[n.StartByte():n.EndByte()])
	}
	keyName := func(n *tree_sitter.Node) string {
		if n == nil {
			return ""
		}
		switch n.Kind() {
		case "property_identifier":
			return text(n)
		case "string":
			return stringValue(text(n))
		}
		return ""
	}

	var v2Flag *bool
	seen := make(map[string]bool)
	stack := []*tree_sitter.Node{tree.RootNode()}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Kind() {
		case "pair":
			key := keyName(n.ChildByFieldName("key"))
			value := n.ChildByFieldName("value")
			if value == nil || seen[key] {
				break
			}
			switch key {
			case "appDirectory":
				if value.Kind() == "string" {
					cfg.AppDirectory = filepath.FromSlash(strings.TrimSuffix(stringValue(text(value)), "/"))
					seen[key] = true
				}
			case "ignoredRouteFiles":
				if value.Kind() == "array" {
					for i := uint(0); i < value.NamedChildCount(); i++ {
						if el := value.NamedChild(i); el != nil && el.Kind() == "string" {
							cfg.IgnoredRouteFiles = append(cfg.IgnoredRouteFiles, stringValue(text(el)))
						}
					}
					seen[key] = true
				}
			case "v2_routeConvention":
				switch value.Kind() {
				case "true", "false":
					b := value.Kind() == "true"
					v2Flag = &b
					seen[key] = true
				}
			case "routes":
				cfg.CustomRoutes = true
			case "assetsBuildDirectory", "serverBuildDirectory", "buildDirectory":
				if value.Kind() == "string" {
					cfg.BuildDirectories = append(cfg.BuildDirectories, cleanRelDir(stringValue(text(value))))
				}
			case "serverBuildPath":
				if value.Kind() == "string" {
					cfg.BuildDirectories = append(cfg.BuildDirectories, cleanRelDir(path.Dir(stringValue(text(value)))))
				}
			}
		case "method_definition":
			if name := n.ChildByFieldName("name"); name != nil && text(name) == "routes" {
				cfg.CustomRoutes = true
			}
		}

		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if child := n.Child(uint(i)); child != nil {
				stack = append(stack, child)
			}
		}
	}
	return v2Flag, nil
}

// cleanRelDir normalizes a config directory such as "./public/build/".
func cleanRelDir(dir string) string {
	dir = path.Clean(strings.TrimPrefix(dir, "./"))
	return strings.TrimSuffix(dir, "/")
}

// stringValue strips the quotes from a string literal. Config paths and
// globs never need escape processing.
func stringValue(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// remixVersion returns the declared @remix-run/dev version, lower bound of
// a range, or nil.
func remixVersion(root string) *semver.Version {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		debug.LogRoutes("ignoring unreadable package.json in %s: %v\n", root, err)
		return nil
	}
	versionRange, ok := pkg.DevDependencies[remixVitePlugin]
	if !ok {
		versionRange, ok = pkg.Dependencies[remixVitePlugin]
	}
	if !ok {
		return nil
	}
	v, err := semver.NewVersion(strings.TrimLeft(versionRange, "^~>=< v"))
	if err != nil {
		return nil
	}
	return v
}
