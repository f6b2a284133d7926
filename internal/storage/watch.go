// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jeranaias/ragchat/internal/logging"
)

// DefaultDebounce coalesces the burst of events an atomic write produces.
const DefaultDebounce = 100 * time.Millisecond

// Watch reports changes to the file backing s until ctx is cancelled.
//
// The parent directory is watched rather than the file because atomic
// writes replace the file by rename. Events for the store file and its
// SQLite sidecars (-wal, -journal) are coalesced and delivered as a single
// value on the returned channel. The channel is closed when watching stops.
func Watch(ctx context.Context, s Store, debounce time.Duration, log *zap.Logger) (<-chan struct{}, error) {
	log = logging.OrNop(log)
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	path := s.Path()
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	out := make(chan struct{}, 1)
	base := filepath.Base(path)

	go func() {
		defer close(out)
		defer w.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(ev.Name), base) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(debounce)
				}
				fire = timer.C

			case <-fire:
				fire = nil
				select {
				case out <- struct{}{}:
				default:
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("store watcher error", zap.Error(err))
			}
		}
	}()

	return out, nil
}
