package runner

import (
	"context"
	"errors"
	"os"

	"github.com/standardbeagle/routelint/internal/debug"
	"github.com/standardbeagle/routelint/internal/watch"
)

// ErrNotWatching is returned by Watch on a runner built without WithWatch.
var ErrNotWatching = errors.New("runner was not created with WithWatch")

// Watch lints paths, then keeps linting until ctx is done: edited source
// files are linted on their own, and every file is linted again when a
// project's routes change. report receives each result; changed lists the
// files of a partial run and is nil after a full one.
func (r *Runner) Watch(ctx context.Context, paths []string, report func(res *Result, changed []string)) error {
	if !r.watching {
		return ErrNotWatching
	}
	res, err := r.Lint(ctx, paths...)
	if err != nil {
		return err
	}
	report(res, nil)

	edited := make(chan []string, 16)
	w, err := watch.New(watch.Options{
		Debounce: r.debounce(),
		Exclude:  r.scanner.WatchExcludes(),
		Filter:   r.scanner.Accepts,
	}, func(events []watch.Event) {
		var files []string
		for _, e := range events {
			if e.Type == watch.EventCreate || e.Type == watch.EventWrite {
				files = append(files, e.Path)
			}
		}
		if len(files) == 0 {
			return
		}
		select {
		case edited <- files:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	for _, dir := range watchDirs(r.cfg.Project.Root, paths) {
		if err := w.AddTree(dir); err != nil {
			debug.LogWatch("cannot watch %s: %v\n", dir, err)
		}
	}
	w.Start()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.routesChanged:
			res, err := r.Lint(ctx, paths...)
			if err != nil {
				return ignoreCanceled(ctx, err)
			}
			report(res, nil)
		case files := <-edited:
			res, err := r.LintFiles(ctx, files)
			if err != nil {
				return ignoreCanceled(ctx, err)
			}
			report(res, files)
		}
	}
}

// watchDirs returns the directories among paths, or root when paths is
// empty. Named files are covered by watching the project root instead.
func watchDirs(root string, paths []string) []string {
	if len(paths) == 0 {
		return []string{root}
	}
	var dirs []string
	sawFile := false
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dirs = append(dirs, p)
		} else {
			sawFile = true
		}
	}
	if sawFile {
		dirs = append(dirs, root)
	}
	return dirs
}

func ignoreCanceled(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}
