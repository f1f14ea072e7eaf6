package repository

import (
	"context"
	"database/sql"

	"github.com/avdeev/script-access/internal/database"
	"github.com/avdeev/script-access/internal/model"
)

// AccessRepo owns all SQL against the 'access_list' table.  Every statement
// goes through the retry store; mutations are written upsert-style or as
// absolute updates so an ambiguous retried attempt cannot corrupt state.
type AccessRepo struct{ Store *database.Store }

func NewAccessRepo(s *database.Store) *AccessRepo { return &AccessRepo{Store: s} }

const accessColumns = "nickname, tg_user_id, approved, requested_access"

// GetByUserID fetches the access record for a transport user id.
func (r *AccessRepo) GetByUserID(ctx context.Context, userID int64) (model.AccessRecord, error) {
	var rec model.AccessRecord
	found, ok := r.Store.FetchOne(ctx, "access record lookup by user id",
		"SELECT "+accessColumns+" FROM access_list WHERE tg_user_id = ? LIMIT 1",
		[]any{&rec.Nickname, &rec.UserID, &rec.Approved, &rec.Requested}, userID)
	if !ok {
		return rec, ErrUnavailable
	}
	if !found {
		return rec, ErrNotFound
	}
	return rec, nil
}

// GetByNickname fetches the access record for a nickname.
func (r *AccessRepo) GetByNickname(ctx context.Context, nickname string) (model.AccessRecord, error) {
	var rec model.AccessRecord
	found, ok := r.Store.FetchOne(ctx, "access record lookup by nickname",
		"SELECT "+accessColumns+" FROM access_list WHERE nickname = ? LIMIT 1",
		[]any{&rec.Nickname, &rec.UserID, &rec.Approved, &rec.Requested}, nickname)
	if !ok {
		return rec, ErrUnavailable
	}
	if !found {
		return rec, ErrNotFound
	}
	return rec, nil
}

// UpsertApplication files (or re-files) a registration application: the
// record exists with a null grant and the requested set attached.  The upsert
// keeps a re-application after rejection, and a duplicate retry attempt,
// from tripping the nickname uniqueness constraint.
func (r *AccessRepo) UpsertApplication(ctx context.Context, nickname string, userID int64, requestedRaw string) error {
	ok := r.Store.Exec(ctx, "application save",
		"INSERT INTO access_list (nickname, tg_user_id, approved, requested_access) VALUES (?, ?, NULL, ?) "+
			"ON DUPLICATE KEY UPDATE nickname = VALUES(nickname), approved = NULL, requested_access = VALUES(requested_access)",
		nickname, userID, requestedRaw)
	if !ok {
		return ErrUnavailable
	}
	return nil
}

// SetApproved stores the merged grant and clears the pending requested set
// in one statement, so a decision is atomic with respect to duplicate
// reviewer clicks.
func (r *AccessRepo) SetApproved(ctx context.Context, userID int64, approvedRaw string) error {
	ok := r.Store.Exec(ctx, "application approval",
		"UPDATE access_list SET approved = ?, requested_access = NULL WHERE tg_user_id = ?",
		approvedRaw, userID)
	if !ok {
		return ErrUnavailable
	}
	return nil
}

// SetApprovedByNickname stores a grant addressed by nickname (admin revoke).
func (r *AccessRepo) SetApprovedByNickname(ctx context.Context, nickname, approvedRaw string) error {
	ok := r.Store.Exec(ctx, "grant update by nickname",
		"UPDATE access_list SET approved = ? WHERE nickname = ?",
		approvedRaw, nickname)
	if !ok {
		return ErrUnavailable
	}
	return nil
}

// SetRequested attaches a requested set to an existing record without
// touching the current grant (additional-access flow).
func (r *AccessRepo) SetRequested(ctx context.Context, userID int64, requestedRaw string) error {
	ok := r.Store.Exec(ctx, "additional request save",
		"UPDATE access_list SET requested_access = ? WHERE tg_user_id = ?",
		requestedRaw, userID)
	if !ok {
		return ErrUnavailable
	}
	return nil
}

// ClearRequested drops the pending requested set without touching the
// current grant (reject of an additional-access request).
func (r *AccessRepo) ClearRequested(ctx context.Context, userID int64) error {
	ok := r.Store.Exec(ctx, "additional request clear",
		"UPDATE access_list SET requested_access = NULL WHERE tg_user_id = ?",
		userID)
	if !ok {
		return ErrUnavailable
	}
	return nil
}

// Delete removes the record for a transport user id (ban, self-revoke).
func (r *AccessRepo) Delete(ctx context.Context, userID int64) error {
	ok := r.Store.Exec(ctx, "access record delete",
		"DELETE FROM access_list WHERE tg_user_id = ?", userID)
	if !ok {
		return ErrUnavailable
	}
	return nil
}

// DeleteByNickname removes the record for a nickname (manual admin delete).
func (r *AccessRepo) DeleteByNickname(ctx context.Context, nickname string) error {
	ok := r.Store.Exec(ctx, "access record delete by nickname",
		"DELETE FROM access_list WHERE nickname = ?", nickname)
	if !ok {
		return ErrUnavailable
	}
	return nil
}

// InsertManual adds a nickname with the full legacy grant, bypassing the
// application flow ("/add" admin shortcut).
func (r *AccessRepo) InsertManual(ctx context.Context, nickname string) error {
	ok := r.Store.Exec(ctx, "manual nickname add",
		"INSERT INTO access_list (nickname, approved) VALUES (?, '1') "+
			"ON DUPLICATE KEY UPDATE approved = '1'",
		nickname)
	if !ok {
		return ErrUnavailable
	}
	return nil
}

// ListPending returns every application still awaiting a decision, in
// insertion order.  A record is pending while its grant is NULL or the
// legacy zero.
func (r *AccessRepo) ListPending(ctx context.Context) ([]model.PendingApplication, error) {
	var out []model.PendingApplication
	ok := r.Store.FetchAll(ctx, "pending list fetch",
		"SELECT nickname, tg_user_id FROM access_list WHERE approved IS NULL OR approved = '0'",
		func() { out = out[:0] },
		func(rows *sql.Rows) error {
			var nick string
			var uid sql.NullInt64
			if err := rows.Scan(&nick, &uid); err != nil {
				return err
			}
			out = append(out, model.PendingApplication{Nickname: nick, UserID: uid.Int64})
			return nil
		})
	if !ok {
		return nil, ErrUnavailable
	}
	return out, nil
}

// ListApproved returns every record carrying any grant, legacy markers
// included; the codec upstream decides what they mean.
func (r *AccessRepo) ListApproved(ctx context.Context) ([]model.AccessRecord, error) {
	var out []model.AccessRecord
	ok := r.Store.FetchAll(ctx, "approved list fetch",
		"SELECT "+accessColumns+" FROM access_list WHERE approved IS NOT NULL AND approved != '0'",
		func() { out = out[:0] },
		func(rows *sql.Rows) error {
			var rec model.AccessRecord
			if err := rows.Scan(&rec.Nickname, &rec.UserID, &rec.Approved, &rec.Requested); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	if !ok {
		return nil, ErrUnavailable
	}
	return out, nil
}

// ListUserIDs returns every known transport user id (broadcast audience).
func (r *AccessRepo) ListUserIDs(ctx context.Context) ([]int64, error) {
	var out []int64
	ok := r.Store.FetchAll(ctx, "broadcast audience fetch",
		"SELECT tg_user_id FROM access_list WHERE tg_user_id IS NOT NULL",
		func() { out = out[:0] },
		func(rows *sql.Rows) error {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			out = append(out, id)
			return nil
		})
	if !ok {
		return nil, ErrUnavailable
	}
	return out, nil
}
