package build

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
)

const defaultDebounce = 200 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	// Action is re-run on every change. Defaults to ActionAll.
	Action Action
	// Debounce is how long to wait for further events before rebuilding.
	Debounce time.Duration
}

// Watch runs opts.Action once, then again whenever something under the
// source or asset directories changes, until ctx is cancelled. Events that
// arrive while a rebuild is running collapse into one follow-up rebuild.
// Rebuild failures are logged and do not stop watching.
func (b *Builder) Watch(ctx context.Context, opts WatchOptions) error {
	if opts.Action == "" {
		opts.Action = ActionAll
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if _, err := b.stages(opts.Action); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dist := b.cfg.DistPath()
	for _, dir := range b.cfg.WatchDirs() {
		if err := addRecursive(watcher, dir, dist); err != nil {
			pterm.Warning.Printf("Not watching %s: %v\n", dir, err)
		}
	}

	b.rebuild(ctx, opts.Action)
	pterm.Info.Println("Watching for changes (press Ctrl+C to stop)...")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if contains(dist, event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(watcher, event.Name, dist)
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pterm.Debug.Printf("Change: %s\n", event)
				pending = time.After(opts.Debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			pterm.Warning.Printf("Watcher error: %v\n", err)

		case <-pending:
			pending = nil
			pterm.Info.Println("Change detected, rebuilding...")
			b.rebuild(ctx, opts.Action)
		}
	}
}

func (b *Builder) rebuild(ctx context.Context, a Action) {
	if err := b.Run(ctx, a); err != nil {
		if ctx.Err() != nil {
			return
		}
		pterm.Error.Printf("Rebuild failed: %v\n", err)
	}
}

func addRecursive(watcher *fsnotify.Watcher, root, skip string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if contains(skip, path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
