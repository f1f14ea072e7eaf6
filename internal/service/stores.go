package service

import (
	"context"

	"github.com/avdeev/script-access/internal/model"
)

// The services consume these narrow store interfaces rather than the
// concrete repositories so the workflow logic can be exercised against
// in-memory fakes.  The repository package satisfies all of them.

// AccessStore is the persistence surface for access records.
type AccessStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.AccessRecord, error)
	GetByNickname(ctx context.Context, nickname string) (model.AccessRecord, error)
	UpsertApplication(ctx context.Context, nickname string, userID int64, requestedRaw string) error
	SetApproved(ctx context.Context, userID int64, approvedRaw string) error
	SetApprovedByNickname(ctx context.Context, nickname, approvedRaw string) error
	SetRequested(ctx context.Context, userID int64, requestedRaw string) error
	ClearRequested(ctx context.Context, userID int64) error
	Delete(ctx context.Context, userID int64) error
	DeleteByNickname(ctx context.Context, nickname string) error
	InsertManual(ctx context.Context, nickname string) error
	ListPending(ctx context.Context) ([]model.PendingApplication, error)
	ListApproved(ctx context.Context) ([]model.AccessRecord, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// BanStore is the persistence surface for ban entries.
type BanStore interface {
	Insert(ctx context.Context, userID int64, reason string) error
	Delete(ctx context.Context, userID int64) error
	Reason(ctx context.Context, userID int64) (string, error)
	List(ctx context.Context) ([]model.BanEntry, error)
}

// SuggestionStore is the persistence surface for suggestions.
type SuggestionStore interface {
	Insert(ctx context.Context, userID int64, nickname, script, text string) error
	Get(ctx context.Context, id int64) (model.Suggestion, error)
	List(ctx context.Context) ([]model.Suggestion, error)
	Delete(ctx context.Context, id int64) error
}
