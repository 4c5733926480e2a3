package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

const (
	settingsBucket = "settings"
	diskvCacheMax  = 1024 * 1024
)

// DiskvKVStore implements KVStore as one file per key under a directory.
// Per-date keys are bucketed into one subdirectory per key family.
type DiskvKVStore struct {
	d        *diskv.Diskv
	basePath string
	logger   *slog.Logger

	// keys changed on disk by another process; read past the cache once
	stale sync.Map
}

// NewDiskvKVStore opens (creating if needed) a directory-backed store.
func NewDiskvKVStore(basePath string, logger *slog.Logger) (*DiskvKVStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &DiskvKVStore{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathKey,
			InverseTransform:  pathKeyToKey,
			CacheSizeMax:      diskvCacheMax,
		}),
		basePath: basePath,
		logger:   loggerOrDefault(logger),
	}, nil
}

func (s *DiskvKVStore) Get(_ context.Context, key string) (string, bool, error) {
	if err := validateFileKey(key); err != nil {
		return "", false, err
	}
	_, direct := s.stale.LoadAndDelete(key)
	rc, err := s.d.ReadStream(key, direct)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return string(data), true, nil
}

func (s *DiskvKVStore) Set(_ context.Context, key, value string) error {
	if err := validateFileKey(key); err != nil {
		return err
	}
	if err := s.d.WriteString(key, value); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *DiskvKVStore) Delete(_ context.Context, key string) error {
	if err := validateFileKey(key); err != nil {
		return err
	}
	if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("erasing %s: %w", key, err)
	}
	return nil
}

// Keys lists keys starting with prefix, sorted.
func (s *DiskvKVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	// Walk the whole tree: a bare prefix does not map onto one bucket.
	for key := range s.d.Keys(ctx.Done()) {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *DiskvKVStore) invalidate(key string) {
	s.stale.Store(key, struct{}{})
}

func validateFileKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("store: invalid key %q", key)
	}
	return nil
}

// keyToPathKey stores lifeos-tasks-day-2025-06-17 as tasks-day/lifeos-tasks-day-2025-06-17.
// The file name is always the full key, so the inverse only needs the file name.
func keyToPathKey(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{bucketFor(key)},
		FileName: key,
	}
}

func pathKeyToKey(pk *diskv.PathKey) string {
	return pk.FileName
}

func bucketFor(key string) string {
	date, ok := DateFromKey(key)
	if !ok {
		return settingsBucket
	}
	family := strings.TrimSuffix(strings.TrimSuffix(key, date), "-")
	return strings.TrimPrefix(family, "lifeos-")
}
