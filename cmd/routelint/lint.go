package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/standardbeagle/routelint/internal/display"
	"github.com/standardbeagle/routelint/internal/lint"
	"github.com/standardbeagle/routelint/internal/runner"

	"github.com/urfave/cli/v2"
)

// lintReport is the JSON output of a lint run.
type lintReport struct {
	Files      int            `json:"files"`
	Findings   []lint.Finding `json:"findings"`
	Summary    lint.Summary   `json:"summary"`
	FileErrors []string       `json:"fileErrors,omitempty"`
	DurationMs int64          `json:"durationMs"`
}

func lintCommand(c *cli.Context) error {
	paths := absPaths(c.Args().Slice())
	cfg, err := loadConfigWithOverrides(c, firstOr(paths, "."))
	if err != nil {
		return failure(err)
	}

	r := runner.New(cfg, runner.WithLogger(warnLogger(c)))
	defer r.Close()

	res, err := r.Lint(c.Context, paths...)
	if err != nil {
		return failure(err)
	}
	if err := writeResult(c, cfg.Project.Root, res); err != nil {
		return failure(err)
	}
	if res.Summary.Errors > 0 || len(res.FileErrors) > 0 {
		return cli.Exit("", exitFindings)
	}
	return nil
}

func watchCommand(c *cli.Context) error {
	paths := absPaths(c.Args().Slice())
	cfg, err := loadConfigWithOverrides(c, firstOr(paths, "."))
	if err != nil {
		return failure(err)
	}

	r := runner.New(cfg, runner.WithLogger(warnLogger(c)), runner.WithWatch())
	defer r.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var writeErr error
	err = r.Watch(ctx, paths, func(res *runner.Result, changed []string) {
		out := c.App.Writer
		if changed == nil {
			fmt.Fprintf(out, "[%s] linted %d files\n", time.Now().Format("15:04:05"), res.Files)
		} else {
			fmt.Fprintf(out, "[%s] changed: %s\n", time.Now().Format("15:04:05"), relList(cfg.Project.Root, changed))
		}
		if err := writeResult(c, cfg.Project.Root, res); err != nil && writeErr == nil {
			writeErr = err
			stop()
		}
	})
	if err == nil {
		err = writeErr
	}
	if err != nil {
		return failure(err)
	}
	return nil
}

// writeResult prints a lint result in the selected format. Unreadable
// files are reported on stderr in the text formats.
func writeResult(c *cli.Context, root string, res *runner.Result) error {
	out := c.App.Writer
	format := c.String("format")

	if format == "json" {
		report := lintReport{
			Files:      res.Files,
			Findings:   res.Findings,
			Summary:    res.Summary,
			DurationMs: res.Duration.Milliseconds(),
		}
		if report.Findings == nil {
			report.Findings = []lint.Finding{}
		}
		for _, ferr := range res.FileErrors {
			report.FileErrors = append(report.FileErrors, ferr.Error())
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	for _, ferr := range res.FileErrors {
		fmt.Fprintf(c.App.ErrWriter, "routelint: %v\n", ferr)
	}
	formatter := display.NewFindingsFormatter(display.FormatterOptions{
		Format:  format,
		BaseDir: root,
	})
	text := formatter.Format(res.Findings)
	if text == "" && format != "compact" {
		text = fmt.Sprintf("%s in %d files\n", display.SummaryLine(res.Summary), res.Files)
	}
	_, err := io.WriteString(out, text)
	return err
}

func absPaths(args []string) []string {
	paths := make([]string, 0, len(args))
	for _, a := range args {
		if abs, err := filepath.Abs(a); err == nil {
			a = abs
		}
		paths = append(paths, a)
	}
	return paths
}

func firstOr(paths []string, fallback string) string {
	if len(paths) > 0 {
		return paths[0]
	}
	return fallback
}

func relList(root string, files []string) string {
	s := ""
	for i, f := range files {
		if i > 0 {
			s += ", "
		}
		if rel, err := filepath.Rel(root, f); err == nil {
			f = filepath.ToSlash(rel)
		}
		s += f
	}
	return s
}
