package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchCoalesce = 100 * time.Millisecond

// Watch streams key change events until ctx is cancelled. Bursts of writes to
// the same key are coalesced. The channel is closed when ctx is done or the
// watcher fails.
func (s *DiskvKVStore) Watch(ctx context.Context) (<-chan KeyEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				s.logger.Warn("store watcher close", slog.String("error", err.Error()))
			}
		})
	}

	dirs, err := collectDirs(s.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan KeyEvent, 64)
	go func() {
		defer close(events)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		send := func(ev KeyEvent) {
			select {
			case events <- ev:
			default:
				// Consumer is behind; it reloads on the next event anyway.
			}
		}
		throttle := newKeyThrottle(watchCoalesce)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("store watcher error", slog.String("error", err.Error()))
				throttle.Enqueue(KeyEvent{}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Has(fsnotify.Create) {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						if _, found := watched[dir]; !found {
							if err := watcher.Add(dir); err != nil {
								s.logger.Warn("store watch dir", slog.String("dir", dir), slog.String("error", err.Error()))
							} else {
								watched[dir] = struct{}{}
							}
						}
						continue
					}
				}
				key := filepath.Base(evt.Name)
				if validateFileKey(key) != nil {
					continue
				}
				s.invalidate(key)
				throttle.Enqueue(KeyEvent{Key: key}, send)
			}
		}
	}()
	return events, nil
}

func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// keyThrottle coalesces change notifications so a consumer reloads once per
// burst of filesystem activity. Sends happen under mu, so once Stop returns
// no flush can reach send.
type keyThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	delay   time.Duration
	stopped bool
}

func newKeyThrottle(delay time.Duration) *keyThrottle {
	return &keyThrottle{delay: delay, pending: make(map[string]struct{})}
}

func (t *keyThrottle) Enqueue(ev KeyEvent, send func(KeyEvent)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.pending[ev.Key] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() { t.flush(send) })
	}
}

// flush delivers the pending keys. send must not block.
func (t *keyThrottle) flush(send func(KeyEvent)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = nil
	if t.stopped {
		return
	}
	pending := t.pending
	t.pending = make(map[string]struct{})

	if _, all := pending[""]; all {
		send(KeyEvent{})
		return
	}
	for key := range pending {
		send(KeyEvent{Key: key})
	}
}

func (t *keyThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
