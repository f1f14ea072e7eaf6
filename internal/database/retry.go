package database

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"
)

// Store executes statements against the database with bounded retries.
// Callers never see driver errors: a mutation reports plain success or
// failure, a fetch additionally reports whether a row matched.  Every failed
// attempt is logged with the operation description so transient outages are
// visible without crashing any workflow.
//
// A reported success means the statement committed.  A reported failure
// means the operation did not happen from the caller's point of view, but an
// earlier physical attempt may still have landed before a later one failed,
// so mutation SQL routed through Exec must stay safe to retry (upserts,
// INSERT IGNORE, absolute UPDATEs).
type Store struct {
	db       *sql.DB
	attempts int
	delay    time.Duration
}

// NewStore wraps an open connection pool.  attempts and delay below 1/0 fall
// back to the defaults of three attempts and half a second.
func NewStore(db *sql.DB, attempts int, delay time.Duration) *Store {
	if attempts < 1 {
		attempts = 3
	}
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Store{db: db, attempts: attempts, delay: delay}
}

// Ready reports whether the pool has been initialized.  Every operation
// refuses to run (returns failure immediately) when it has not.
func (s *Store) Ready() bool {
	return s != nil && s.db != nil
}

// withRetry runs op up to s.attempts times with linearly increasing backoff
// and returns true on the first success.
func (s *Store) withRetry(desc string, op func() error) bool {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		err := op()
		if err == nil {
			return true
		}
		log.Printf("%s: attempt %d failed: %v", desc, attempt, err)
		if attempt < s.attempts {
			time.Sleep(s.delay * time.Duration(attempt))
		}
	}
	return false
}

// Exec runs a mutation and reports whether it committed.
func (s *Store) Exec(ctx context.Context, desc, query string, args ...any) bool {
	if !s.Ready() {
		return false
	}
	return s.withRetry(desc, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// FetchOne scans a single row into dest.  found is false when no row
// matched; ok is false when every attempt failed or the pool is not ready.
// A missing row is a successful query, not a retryable failure.
func (s *Store) FetchOne(ctx context.Context, desc, query string, dest []any, args ...any) (found, ok bool) {
	if !s.Ready() {
		return false, false
	}
	ok = s.withRetry(desc, func() error {
		err := s.db.QueryRowContext(ctx, query, args...).Scan(dest...)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, ok
}

// FetchAll runs a query and hands each row to scan.  reset is invoked before
// iteration on every attempt so a retry does not keep partial results from a
// failed pass.
func (s *Store) FetchAll(ctx context.Context, desc, query string, reset func(), scan func(*sql.Rows) error, args ...any) bool {
	if !s.Ready() {
		return false
	}
	return s.withRetry(desc, func() error {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		if reset != nil {
			reset()
		}
		for rows.Next() {
			if err := scan(rows); err != nil {
				return err
			}
		}
		return rows.Err()
	})
}
