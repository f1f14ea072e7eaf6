package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avdeev/script-access/internal/capability"
	"github.com/avdeev/script-access/internal/model"
)

func TestToggleOnlyRequested(t *testing.T) {
	s := NewSessions()
	s.StartReview(1, ReviewSession{
		UserID:    100,
		Nickname:  "Ivan_Petrov",
		Requested: capability.FromNames([]string{capability.Mine}),
	})

	_, ok := s.Toggle(1, capability.Oskolki)
	assert.False(t, ok)

	sess, ok := s.Toggle(1, capability.Mine)
	assert.True(t, ok)
	assert.True(t, sess.Selected.Has(capability.Mine))

	// A second toggle flips it back off.
	sess, ok = s.Toggle(1, capability.Mine)
	assert.True(t, ok)
	assert.False(t, sess.Selected.Has(capability.Mine))
}

func TestReviewReturnsCopy(t *testing.T) {
	s := NewSessions()
	s.StartReview(1, ReviewSession{
		UserID:    100,
		Requested: capability.FromNames([]string{capability.Mine}),
	})

	sess, ok := s.Review(1)
	assert.True(t, ok)
	// Mutating the copy must not leak into the stored session.
	sess.Selected[capability.Mine] = true

	again, _ := s.Review(1)
	assert.False(t, again.Selected.Has(capability.Mine))
}

func TestEndReview(t *testing.T) {
	s := NewSessions()
	s.StartReview(1, ReviewSession{UserID: 100})
	s.EndReview(1)

	_, ok := s.Review(1)
	assert.False(t, ok)
}

func TestPendingPick(t *testing.T) {
	s := NewSessions()
	list := []model.PendingApplication{
		{Nickname: "Ivan_Petrov", UserID: 100},
		{Nickname: "Petr_Ivanov", UserID: 101},
	}
	s.SetPending(1, list)

	item, ok := s.Pick(1, 2)
	assert.True(t, ok)
	assert.Equal(t, int64(101), item.UserID)

	_, ok = s.Pick(1, 0)
	assert.False(t, ok)
	_, ok = s.Pick(1, 3)
	assert.False(t, ok)
	_, ok = s.Pick(2, 1)
	assert.False(t, ok)
}
