package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avdeev/script-access/internal/capability"
	"github.com/avdeev/script-access/internal/model"
)

func seedApproved(env *testEnv, nickname string, userID int64, approved string) {
	env.store.rows[nickname] = &model.AccessRecord{
		Nickname: nickname,
		UserID:   sql.NullInt64{Int64: userID, Valid: true},
		Approved: sql.NullString{String: approved, Valid: true},
	}
}

func TestCapabilitiesUnknownUser(t *testing.T) {
	env := newTestEnv()

	set, err := env.access.Capabilities(context.Background(), 100)
	assert.NoError(t, err)
	assert.Nil(t, set)
}

func TestCapabilitiesLegacyGrant(t *testing.T) {
	env := newTestEnv()
	seedApproved(env, "Ivan_Petrov", 100, "1")

	set, err := env.access.Capabilities(context.Background(), 100)
	assert.NoError(t, err)
	assert.True(t, set.Has(capability.Mine))
	assert.True(t, set.Has(capability.Oskolki))
}

func TestCapabilitiesServedFromCacheWhenStoreDown(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedApproved(env, "Ivan_Petrov", 100, `{"mine":true}`)

	// First read warms the cache.
	set, err := env.access.Capabilities(ctx, 100)
	assert.NoError(t, err)
	assert.True(t, set.Has(capability.Mine))

	// The store going away is invisible while the entry is warm.
	env.store.down = true
	set, err = env.access.Capabilities(ctx, 100)
	assert.NoError(t, err)
	assert.True(t, set.Has(capability.Mine))
}

func TestCapabilitiesBanWinsOverCache(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedApproved(env, "Ivan_Petrov", 100, "1")

	set, err := env.access.Capabilities(ctx, 100)
	assert.NoError(t, err)
	assert.True(t, set.Any())

	// The registry is consulted before the cache.
	env.registry.Add(100)
	set, err = env.access.Capabilities(ctx, 100)
	assert.NoError(t, err)
	assert.False(t, set.Any())
}

func TestCapabilitiesPendingNotCached(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.store.rows["Ivan_Petrov"] = &model.AccessRecord{
		Nickname:  "Ivan_Petrov",
		UserID:    sql.NullInt64{Int64: 100, Valid: true},
		Requested: sql.NullString{String: `{"mine":true}`, Valid: true},
	}

	set, err := env.access.Capabilities(ctx, 100)
	assert.NoError(t, err)
	assert.Nil(t, set)
	assert.Zero(t, env.cache.Len())
}

func TestApprovedNickname(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	nick, err := env.access.ApprovedNickname(ctx, 100)
	assert.NoError(t, err)
	assert.Empty(t, nick)

	seedApproved(env, "Ivan_Petrov", 100, `{"oskolki":true}`)
	nick, err = env.access.ApprovedNickname(ctx, 100)
	assert.NoError(t, err)
	assert.Equal(t, "Ivan_Petrov", nick)
}

func TestMissing(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedApproved(env, "Ivan_Petrov", 100, `{"mine":true}`)

	missing, current, err := env.access.Missing(ctx, 100)
	assert.NoError(t, err)
	assert.True(t, current.Has(capability.Mine))
	assert.Equal(t, []string{capability.Oskolki}, missing)
}

func TestListApprovedFilter(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedApproved(env, "Ivan_Petrov", 100, "1")
	seedApproved(env, "Petr_Ivanov", 101, `{"oskolki":true}`)
	// A cleared grant never shows up.
	seedApproved(env, "Anna_Karenina", 102, `{"mine":false,"oskolki":false}`)

	users, err := env.access.ListApproved(ctx, "")
	assert.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = env.access.ListApproved(ctx, capability.Mine)
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "Ivan_Petrov", users[0].Nickname)
}

func TestSuggestionsRequireGrant(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	suggestions := NewSuggestionService(newFakeSuggestionStore(), env.access, env.notifier)

	err := suggestions.Submit(ctx, 100, "mine", "add a pause hotkey")
	assert.ErrorIs(t, err, ErrNoAccess)

	seedApproved(env, "Ivan_Petrov", 100, "1")

	// The script tag must name a known capability.
	err = suggestions.Submit(ctx, 100, "teleport", "add a pause hotkey")
	assert.ErrorIs(t, err, ErrUnknownCapability)

	assert.NoError(t, suggestions.Submit(ctx, 100, "mine", "add a pause hotkey"))
	assert.Contains(t, env.notifier.adminKinds(), "new_suggestion")

	items, err := suggestions.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "Ivan_Petrov", items[0].Nickname)
}

func TestBroadcastSkipsBanned(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedApproved(env, "Ivan_Petrov", 100, "1")
	seedApproved(env, "Petr_Ivanov", 101, "1")
	env.registry.Add(101)

	broadcast := NewBroadcastService(env.store, env.registry, env.notifier)
	sent, failed, err := broadcast.Send(ctx, "maintenance tonight", nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Zero(t, failed)
	assert.Equal(t, []string{"broadcast"}, env.notifier.userKinds(100))
	assert.Empty(t, env.notifier.userKinds(101))
}

func TestBroadcastExplicitTargets(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	broadcast := NewBroadcastService(env.store, env.registry, env.notifier)
	sent, failed, err := broadcast.Send(ctx, "hello", []int64{200, 201})
	assert.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Zero(t, failed)
}
