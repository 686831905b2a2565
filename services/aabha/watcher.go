// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package aabha

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last filesystem
// event before re-linting. Editors typically emit several events per save.
const DefaultDebounce = 300 * time.Millisecond

// Watch lints the given paths, then re-lints whenever a matching file
// changes, invoking onResult after every run.
//
// Inputs:
//   - ctx: Cancels the watch loop. Watch blocks until ctx is done.
//   - paths: Files or directories, as for LintPaths.
//   - debounce: Quiet period after the last event; <= 0 uses DefaultDebounce.
//   - onResult: Called with each run's result, including the initial run.
//     Called from the watch goroutine; must not block for long. Debounced
//     re-runs cover only the files that changed; a removal, rename, or
//     directory-level change widens the run back to the full path set.
//
// Outputs:
//   - error: Watcher setup failure or the first lint error. Context
//     cancellation returns nil.
func (r *Runner) Watch(ctx context.Context, paths []string, debounce time.Duration, onResult func(*RunResult)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := r.addWatchTargets(watcher, paths); err != nil {
		return err
	}

	run := func(targets []string) {
		result, err := r.LintPaths(ctx, targets)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("watch run failed", slog.Any("error", err))
			return
		}
		onResult(result)
	}
	run(paths)

	var timer *time.Timer
	var timerC <-chan time.Time
	pending := make(map[string]bool)
	full := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !r.relevantEvent(event) {
				continue
			}
			switch {
			case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
				// The changed set can only shrink here; re-lint everything
				// so stale diagnostics for the gone file drop out.
				full = true
			case isDir(event.Name):
				// New directories must be added to the watch set; fsnotify
				// does not watch recursively.
				if event.Op.Has(fsnotify.Create) {
					_ = watcher.Add(event.Name)
				}
				full = true
			default:
				pending[filepath.ToSlash(filepath.Clean(event.Name))] = true
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", slog.Any("error", err))

		case <-timerC:
			timer = nil
			timerC = nil
			run(relintTargets(pending, full, paths))
			pending = make(map[string]bool)
			full = false
		}
	}
}

// relintTargets narrows a debounced re-run to the files collected during the
// quiet period. A full-run marker, an empty change set, or a pending file
// that vanished before the timer fired all fall back to the original paths.
func relintTargets(pending map[string]bool, full bool, paths []string) []string {
	if full || len(pending) == 0 {
		return paths
	}
	targets := make([]string, 0, len(pending))
	for p := range pending {
		if _, err := os.Stat(p); err != nil {
			return paths
		}
		targets = append(targets, p)
	}
	sort.Strings(targets)
	return targets
}

// isDir reports whether the path currently names a directory.
func isDir(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.IsDir()
}

// addWatchTargets registers every directory under paths with the watcher.
func (r *Runner) addWatchTargets(watcher *fsnotify.Watcher, paths []string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			if err := watcher.Add(p); err != nil {
				return fmt.Errorf("watch %s: %w", p, err)
			}
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}
	return nil
}

// relevantEvent reports whether an fsnotify event should trigger a re-lint.
func (r *Runner) relevantEvent(event fsnotify.Event) bool {
	if event.Op.Has(fsnotify.Chmod) {
		return false
	}
	if isDir(event.Name) {
		return true
	}
	return r.matchesExtension(filepath.ToSlash(event.Name))
}
