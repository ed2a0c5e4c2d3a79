package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/yusing/cspolicy/errs"
)

const (
	watchDebounce   = 100 * time.Millisecond
	reloadMaxTries  = 5
	reloadFirstWait = 50 * time.Millisecond
)

// Watch calls onChange with the reloaded configuration whenever the file at
// path changes, until ctx is done.
//
// The parent directory is watched so that editors replacing the file are
// handled. A failed reload is retried with exponential backoff. When it
// still fails the error is logged and the previous configuration stays.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch directory: %w", err)
	}
	go watchLoop(ctx, watcher, absPath, onChange)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, onChange func(*Config)) {
	defer watcher.Close()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				cfg, err := reload(ctx, path)
				if err != nil {
					if ctx.Err() == nil {
						errs.LogError("config reload failed, keeping the previous config", errs.PrependSubject(path, err))
					}
					return
				}
				log.Info().Str("path", path).Msg("config reloaded")
				onChange(cfg)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			errs.LogWarn("config watcher error", err)
		}
	}
}

func reload(ctx context.Context, path string) (*Config, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = reloadFirstWait
	return backoff.Retry(ctx, func() (*Config, error) {
		return Load(path)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(reloadMaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Debug().Err(err).Dur("retry_in", next).Msg("config reload failed")
		}),
	)
}
