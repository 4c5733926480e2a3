package testutil

import (
	"context"
	"sync/atomic"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// FailOnNthSetStore wraps a key-value store and fails the Nth Set call,
// counting from 1. Reads and deletes pass through.
type FailOnNthSetStore struct {
	Inner  kvStore
	FailOn int32
	Err    error

	sets atomic.Int32
}

func (s *FailOnNthSetStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.Inner.Get(ctx, key)
}

func (s *FailOnNthSetStore) Set(ctx context.Context, key, value string) error {
	if s.sets.Add(1) == s.FailOn {
		return s.Err
	}
	return s.Inner.Set(ctx, key, value)
}

func (s *FailOnNthSetStore) Delete(ctx context.Context, key string) error {
	return s.Inner.Delete(ctx, key)
}

func (s *FailOnNthSetStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.Inner.Keys(ctx, prefix)
}

// Sets reports how many Set calls were attempted.
func (s *FailOnNthSetStore) Sets() int { return int(s.sets.Load()) }
