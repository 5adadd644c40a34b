package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchDeployment calls apply with the parsed artifact each time path is
// written or recreated, until ctx is done. Unreadable or empty artifacts are
// reported to onErr (when non-nil) and skipped.
func WatchDeployment(ctx context.Context, path string, apply func(*Deployment), onErr func(error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Editors and deploy scripts often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	report := func(err error) {
		if onErr != nil {
			onErr(err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			d, err := LoadDeployment(abs)
			if err != nil {
				report(err)
				continue
			}
			if len(d.Contracts) == 0 {
				continue
			}
			apply(d)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			report(err)
		}
	}
}
