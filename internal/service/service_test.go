package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/avdeev/script-access/internal/model"
	"github.com/avdeev/script-access/internal/repository"
)

// In-memory fakes for the store interfaces.  Each fake can be flipped into
// a "down" mode where every call reports ErrUnavailable, mirroring what the
// repositories return once the retry layer gives up.

type fakeAccessStore struct {
	mu   sync.Mutex
	rows map[string]*model.AccessRecord // keyed by nickname
	down bool
}

func newFakeAccessStore() *fakeAccessStore {
	return &fakeAccessStore{rows: make(map[string]*model.AccessRecord)}
}

func (f *fakeAccessStore) byUserID(userID int64) *model.AccessRecord {
	for _, r := range f.rows {
		if r.UserID.Valid && r.UserID.Int64 == userID {
			return r
		}
	}
	return nil
}

func (f *fakeAccessStore) GetByUserID(_ context.Context, userID int64) (model.AccessRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return model.AccessRecord{}, repository.ErrUnavailable
	}
	if r := f.byUserID(userID); r != nil {
		return *r, nil
	}
	return model.AccessRecord{}, repository.ErrNotFound
}

func (f *fakeAccessStore) GetByNickname(_ context.Context, nickname string) (model.AccessRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return model.AccessRecord{}, repository.ErrUnavailable
	}
	if r, ok := f.rows[nickname]; ok {
		return *r, nil
	}
	return model.AccessRecord{}, repository.ErrNotFound
}

func (f *fakeAccessStore) UpsertApplication(_ context.Context, nickname string, userID int64, requestedRaw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return repository.ErrUnavailable
	}
	if r := f.byUserID(userID); r != nil {
		delete(f.rows, r.Nickname)
	}
	f.rows[nickname] = &model.AccessRecord{
		Nickname:  nickname,
		UserID:    sql.NullInt64{Int64: userID, Valid: true},
		Requested: sql.NullString{String: requestedRaw, Valid: true},
	}
	return nil
}

func (f *fakeAccessStore) SetApproved(_ context.Context, userID int64, approvedRaw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return repository.ErrUnavailable
	}
	r := f.byUserID(userID)
	if r == nil {
		return repository.ErrNotFound
	}
	r.Approved = sql.NullString{String: approvedRaw, Valid: true}
	r.Requested = sql.NullString{}
	return nil
}

func (f *fakeAccessStore) SetApprovedByNickname(_ context.Context, nickname, approvedRaw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return repository.ErrUnavailable
	}
	r, ok := f.rows[nickname]
	if !ok {
		return repository.ErrNotFound
	}
	r.Approved = sql.NullString{String: approvedRaw, Valid: true}
	r.Requested = sql.NullString{}
	return nil
}

func (f *fakeAccessStore) SetRequested(_ context.Context, userID int64, requestedRaw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return repository.ErrUnavailable
	}
	r := f.byUserID(userID)
	if r == nil {
		return repository.ErrNotFound
	}
	r.Requested = sql.NullString{String: requestedRaw, Valid: true}
	return nil
}

func (f *fakeAccessStore) ClearRequested(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return repository.ErrUnavailable
	}
	r := f.byUserID(userID)
	if r == nil {
		return repository.ErrNotFound
	}
	r.Requested = sql.NullString{}
	return nil
}

func (f *fakeAccessStore) Delete(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return repository.ErrUnavailable
	}
	r := f.byUserID(userID)
	if r == nil {
		return repository.ErrNotFound
	}
	delete(f.rows, r.Nickname)
	return nil
}

func (f *fakeAccessStore) DeleteByNickname(_ context.Context, nickname string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return repository.ErrUnavailable
	}
	if _, ok := f.rows[nickname]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, nickname)
	return nil
}

func (f *fakeAccessStore) InsertManual(_ context.Context, nickname string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return repository.ErrUnavailable
	}
	r, ok := f.rows[nickname]
	if !ok {
		r = &model.AccessRecord{Nickname: nickname}
		f.rows[nickname] = r
	}
	r.Approved = sql.NullString{String: "1", Valid: true}
	r.Requested = sql.NullString{}
	return nil
}

func (f *fakeAccessStore) ListPending(_ context.Context) ([]model.PendingApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, repository.ErrUnavailable
	}
	var out []model.PendingApplication
	for _, r := range f.rows {
		if r.Requested.Valid && r.Requested.String != "" && r.UserID.Valid {
			out = append(out, model.PendingApplication{Nickname: r.Nickname, UserID: r.UserID.Int64})
		}
	}
	return out, nil
}

func (f *fakeAccessStore) ListApproved(_ context.Context) ([]model.AccessRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, repository.ErrUnavailable
	}
	var out []model.AccessRecord
	for _, r := range f.rows {
		if r.Approved.Valid && r.Approved.String != "" && r.Approved.String != "0" {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeAccessStore) ListUserIDs(_ context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, repository.ErrUnavailable
	}
	var out []int64
	for _, r := range f.rows {
		if r.UserID.Valid {
			out = append(out, r.UserID.Int64)
		}
	}
	return out, nil
}

type fakeBanStore struct {
	mu      sync.Mutex
	reasons map[int64]string
	down    bool
}

func newFakeBanStore() *fakeBanStore {
	return &fakeBanStore{reasons: make(map[int64]string)}
}

func (f *fakeBanStore) Insert(_ context.Context, userID int64, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return repository.ErrUnavailable
	}
	if _, ok := f.reasons[userID]; !ok {
		f.reasons[userID] = reason
	}
	return nil
}

func (f *fakeBanStore) Delete(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return repository.ErrUnavailable
	}
	if _, ok := f.reasons[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.reasons, userID)
	return nil
}

func (f *fakeBanStore) Reason(_ context.Context, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return "", repository.ErrUnavailable
	}
	reason, ok := f.reasons[userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return reason, nil
}

func (f *fakeBanStore) List(_ context.Context) ([]model.BanEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, repository.ErrUnavailable
	}
	var out []model.BanEntry
	for id, reason := range f.reasons {
		out = append(out, model.BanEntry{UserID: id, Reason: reason})
	}
	return out, nil
}

type fakeSuggestionStore struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]model.Suggestion
}

func newFakeSuggestionStore() *fakeSuggestionStore {
	return &fakeSuggestionStore{nextID: 1, items: make(map[int64]model.Suggestion)}
}

func (f *fakeSuggestionStore) Insert(_ context.Context, userID int64, nickname, script, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[f.nextID] = model.Suggestion{ID: f.nextID, UserID: userID, Nickname: nickname, Script: script, Text: text}
	f.nextID++
	return nil
}

func (f *fakeSuggestionStore) Get(_ context.Context, id int64) (model.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return model.Suggestion{}, repository.ErrNotFound
	}
	return item, nil
}

func (f *fakeSuggestionStore) List(_ context.Context) ([]model.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Suggestion
	for _, item := range f.items {
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeSuggestionStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

// fakeNotifier counts deliveries per (audience, kind) so tests can assert a
// notification fired exactly once.
type fakeNotifier struct {
	mu    sync.Mutex
	user  map[int64][]string // userID -> kinds
	admin []string           // kinds
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{user: make(map[int64][]string)}
}

func (f *fakeNotifier) NotifyUser(_ context.Context, userID int64, kind, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user[userID] = append(f.user[userID], kind)
	return nil
}

func (f *fakeNotifier) NotifyAdmin(_ context.Context, kind, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admin = append(f.admin, kind)
	return nil
}

func (f *fakeNotifier) userKinds(userID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.user[userID]))
	copy(out, f.user[userID])
	return out
}

func (f *fakeNotifier) adminKinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.admin))
	copy(out, f.admin)
	return out
}
