// Build artifact detection from the project's Remix and package configuration
// Compiled output contains JSX-free bundles that only produce noise
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/routelint/internal/debug"
	"github.com/standardbeagle/routelint/internal/remix"
)

// BuildArtifactDetector finds build output directories of a Remix project
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a new build artifact detector
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories returns glob patterns excluding the directories
// the Remix compiler, tsc and package scripts write to
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string
	patterns = append(patterns, bad.detectRemixOutputs()...)
	patterns = append(patterns, bad.detectScriptOutputs()...)
	patterns = append(patterns, bad.detectTSConfigOutput()...)
	return appendUnique(nil, patterns...)
}

func outputPattern(dir string) string {
	dir = strings.Trim(filepath.ToSlash(dir), "/")
	dir = strings.TrimPrefix(dir, "./")
	if dir == "" || dir == "." || strings.HasPrefix(dir, "..") {
		return ""
	}
	return dir + "/**"
}

// detectRemixOutputs reads assetsBuildDirectory and friends from the Remix config
func (bad *BuildArtifactDetector) detectRemixOutputs() []string {
	if _, ok := remix.ConfigFile(bad.projectRoot); !ok {
		return nil
	}
	cfg, err := remix.ReadAppConfig(bad.projectRoot)
	if err != nil {
		debug.Printf("build artifact detection skipped: %v\n", err)
		return nil
	}
	var patterns []string
	for _, dir := range cfg.BuildDirectories {
		if p := outputPattern(dir); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// detectScriptOutputs looks for --outDir in package.json scripts
func (bad *BuildArtifactDetector) detectScriptOutputs() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, "package.json"))
	if err != nil {
		return nil
	}
	var pkg struct {
		Scripts map[string]string `json:"scripts"`
	}
	if json.Unmarshal(data, &pkg) != nil {
		return nil
	}

	var patterns []string
	for _, script := range pkg.Scripts {
		parts := strings.Fields(script)
		for i, part := range parts {
			if (part == "--outDir" || part == "-outDir") && i+1 < len(parts) {
				if p := outputPattern(strings.Trim(parts[i+1], "\"'")); p != "" {
					patterns = append(patterns, p)
				}
			}
		}
	}
	return patterns
}

// detectTSConfigOutput reads compilerOptions.outDir. Most Remix projects
// set noEmit, in which case there is nothing to exclude.
func (bad *BuildArtifactDetector) detectTSConfigOutput() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, "tsconfig.json"))
	if err != nil {
		return nil
	}
	var tsconfig struct {
		CompilerOptions struct {
			OutDir string `json:"outDir"`
			NoEmit bool   `json:"noEmit"`
		} `json:"compilerOptions"`
	}
	if json.Unmarshal(data, &tsconfig) != nil || tsconfig.CompilerOptions.NoEmit {
		return nil
	}
	if p := outputPattern(tsconfig.CompilerOptions.OutDir); p != "" {
		return []string{p}
	}
	return nil
}
