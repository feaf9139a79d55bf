package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/standardbeagle/routelint/internal/display"
	"github.com/standardbeagle/routelint/internal/runner"

	"github.com/urfave/cli/v2"
)

func routesCommand(c *cli.Context) error {
	dir := firstOr(absPaths(c.Args().Slice()), ".")
	cfg, err := loadConfigWithOverrides(c, dir)
	if err != nil {
		return failure(err)
	}

	r := runner.New(cfg, runner.WithLogger(warnLogger(c)))
	defer r.Close()

	tree, err := r.Routes(dir)
	if err != nil {
		return failure(err)
	}
	formatter := display.NewTreeFormatter(display.FormatterOptions{
		Format:    c.String("format"),
		ShowFiles: c.Bool("files"),
		MaxDepth:  c.Int("depth"),
		BaseDir:   cfg.Project.Root,
	})
	out := formatter.Format(tree)
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	fmt.Fprint(c.App.Writer, out)
	return nil
}

func checkCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("check needs exactly one route path", exitFailure)
	}
	path := c.Args().First()
	file := c.String("file")
	start := "."
	if file != "" {
		file = absPaths([]string{file})[0]
		start = file
	}

	cfg, err := loadConfigWithOverrides(c, start)
	if err != nil {
		return failure(err)
	}
	r := runner.New(cfg, runner.WithLogger(warnLogger(c)))
	defer r.Close()

	pc, err := r.Check(cfg.Project.Root, file, path)
	if err != nil {
		return failure(err)
	}

	out := c.App.Writer
	if c.String("format") == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(pc); err != nil {
			return failure(err)
		}
	} else {
		target := pc.Resolved
		if target == "" {
			target = pc.Normalized
		}
		switch {
		case pc.Valid:
			fmt.Fprintf(out, "%s: valid (%s)\n", pc.Path, target)
		case pc.Reason != "":
			fmt.Fprintf(out, "%s: not checked, %s\n", pc.Path, pc.Reason)
		default:
			fmt.Fprintf(out, "%s: no route matches %s\n", pc.Path, target)
			if pc.Suggestion != "" {
				fmt.Fprintf(out, "  did you mean %q?\n", pc.Suggestion)
			}
		}
	}
	if !pc.Valid && pc.Reason == "" {
		return cli.Exit("", exitFindings)
	}
	return nil
}
