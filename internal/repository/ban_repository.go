package repository

import (
	"context"
	"database/sql"

	"github.com/avdeev/script-access/internal/database"
	"github.com/avdeev/script-access/internal/model"
)

// BanRepo owns all SQL against the 'banned_users' table.
type BanRepo struct{ Store *database.Store }

func NewBanRepo(s *database.Store) *BanRepo { return &BanRepo{Store: s} }

// Insert persists a ban entry.  INSERT IGNORE keeps the statement safe for
// both a retried attempt and a double ban.
func (r *BanRepo) Insert(ctx context.Context, userID int64, reason string) error {
	ok := r.Store.Exec(ctx, "ban save",
		"INSERT IGNORE INTO banned_users (tg_user_id, reason) VALUES (?, ?)",
		userID, reason)
	if !ok {
		return ErrUnavailable
	}
	return nil
}

// Delete removes a ban entry (unban).
func (r *BanRepo) Delete(ctx context.Context, userID int64) error {
	ok := r.Store.Exec(ctx, "ban delete",
		"DELETE FROM banned_users WHERE tg_user_id = ?", userID)
	if !ok {
		return ErrUnavailable
	}
	return nil
}

// Reason returns the stored ban reason for a user.
func (r *BanRepo) Reason(ctx context.Context, userID int64) (string, error) {
	var reason sql.NullString
	found, ok := r.Store.FetchOne(ctx, "ban reason fetch",
		"SELECT reason FROM banned_users WHERE tg_user_id = ? LIMIT 1",
		[]any{&reason}, userID)
	if !ok {
		return "", ErrUnavailable
	}
	if !found {
		return "", ErrNotFound
	}
	return reason.String, nil
}

// List returns every ban entry.
func (r *BanRepo) List(ctx context.Context) ([]model.BanEntry, error) {
	var out []model.BanEntry
	ok := r.Store.FetchAll(ctx, "ban list fetch",
		"SELECT tg_user_id, reason FROM banned_users",
		func() { out = out[:0] },
		func(rows *sql.Rows) error {
			var e model.BanEntry
			var reason sql.NullString
			if err := rows.Scan(&e.UserID, &reason); err != nil {
				return err
			}
			e.Reason = reason.String
			out = append(out, e)
			return nil
		})
	if !ok {
		return nil, ErrUnavailable
	}
	return out, nil
}
