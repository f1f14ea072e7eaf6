// Package session holds the two kinds of short-lived conversational state:
// the per-user dialog scratch store the front end reads and writes through
// the API, and the in-process review sessions an admin accumulates while
// deciding an application.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoDialog is returned when a user has no stored dialog state.
var ErrNoDialog = errors.New("no dialog state")

// DialogStore keeps one opaque JSON blob of dialog state per user in Redis.
// The engine never inspects the contents; the front end uses it to carry a
// multi-step input (registration nickname, appeal text, broadcast draft)
// across messages.  Entries expire so an abandoned dialog cleans itself up.
type DialogStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewDialogStore wraps a Redis client.  rdb may be nil; every call then
// degrades to ErrNoDialog / no-op so the service keeps running without the
// scratch store.
func NewDialogStore(rdb *redis.Client, ttl time.Duration, prefix string) *DialogStore {
	return &DialogStore{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (s *DialogStore) key(userID int64) string {
	return fmt.Sprintf("%s:%d", s.prefix, userID)
}

// Get returns the stored blob for userID.
func (s *DialogStore) Get(ctx context.Context, userID int64) ([]byte, error) {
	if s.rdb == nil {
		return nil, ErrNoDialog
	}
	v, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoDialog
	}
	return v, err
}

// Set stores the blob for userID with a fresh TTL.
func (s *DialogStore) Set(ctx context.Context, userID int64, data []byte) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Set(ctx, s.key(userID), data, s.ttl).Err()
}

// Clear discards the stored state.  Cancellation of a dialog never touches
// the database, only this scratch entry.
func (s *DialogStore) Clear(ctx context.Context, userID int64) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, s.key(userID)).Err()
}
