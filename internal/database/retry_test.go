package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeDB gives withRetry a Store without a real pool; db stays nil so only
// the retry loop itself is exercised.
func retryStore(attempts int) *Store {
	return &Store{db: nil, attempts: attempts, delay: time.Millisecond}
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	s := retryStore(3)
	calls := 0
	ok := s.withRetry("test op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.True(t, ok)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	s := retryStore(3)
	calls := 0
	ok := s.withRetry("test op", func() error {
		calls++
		return errors.New("down")
	})
	assert.False(t, ok)
	assert.Equal(t, 3, calls, "exactly attempts calls, then give up")
}

func TestStoreNotReady(t *testing.T) {
	var s *Store
	assert.False(t, s.Ready())

	s = NewStore(nil, 3, time.Millisecond)
	assert.False(t, s.Ready())
	assert.False(t, s.Exec(context.Background(), "noop", "SELECT 1"))
	found, ok := s.FetchOne(context.Background(), "noop", "SELECT 1", nil)
	assert.False(t, found)
	assert.False(t, ok)
	assert.False(t, s.FetchAll(context.Background(), "noop", "SELECT 1", nil, nil))
}

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore(nil, 0, 0)
	assert.Equal(t, 3, s.attempts)
	assert.Equal(t, 500*time.Millisecond, s.delay)
}
