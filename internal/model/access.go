package model

import "database/sql"

// AccessRecord mirrors the `access_list` table: the persisted authorization
// state for one nickname.  Approved and Requested hold the raw stored values
// (canonical JSON or a legacy marker); decoding happens at the capability
// codec, never here.
//
// Fields:
//  Nickname  – unique in-game nickname (access_list.nickname).
//  UserID    – transport user id; NULL until first contact (access_list.tg_user_id).
//  Approved  – raw granted capability value (access_list.approved).
//  Requested – raw requested capability value awaiting review
//              (access_list.requested_access).
type AccessRecord struct {
	Nickname  string
	UserID    sql.NullInt64
	Approved  sql.NullString
	Requested sql.NullString
}

// PendingApplication is one row of the reviewer's pending list: a snapshot
// taken at listing time, used to resolve numeric picks.  It may be stale by
// the time the reviewer acts and must be revalidated against the store.
type PendingApplication struct {
	Nickname string
	UserID   int64
}

// BanEntry mirrors the `banned_users` table.
type BanEntry struct {
	UserID int64
	Reason string
}

// Suggestion mirrors the `suggestions` table: per-script feedback from an
// approved user.
type Suggestion struct {
	ID        int64
	UserID    int64
	Nickname  string
	Script    string
	Text      string
	CreatedAt sql.NullTime
}
