package session

import (
	"sync"

	"github.com/avdeev/script-access/internal/capability"
	"github.com/avdeev/script-access/internal/model"
)

// ReviewSession is the ephemeral state of one admin "select capabilities"
// decision: which application is being reviewed, what was requested, and
// which toggles are currently on.  Nothing here is persisted until the admin
// confirms; cancel simply drops the session.
type ReviewSession struct {
	UserID     int64
	Nickname   string
	Requested  capability.Set
	Selected   capability.Set
	Additional bool // merging into an existing grant rather than deciding a first application
}

// Sessions owns all per-admin ephemeral review state: the active
// ReviewSession and the last pending-list snapshot used to resolve numeric
// picks.  All access is serialized by one mutex; the structures are tiny and
// contention is a single admin.
type Sessions struct {
	mu      sync.Mutex
	reviews map[int64]*ReviewSession
	pending map[int64][]model.PendingApplication
}

func NewSessions() *Sessions {
	return &Sessions{
		reviews: make(map[int64]*ReviewSession),
		pending: make(map[int64][]model.PendingApplication),
	}
}

// StartReview replaces the admin's active review session.
func (s *Sessions) StartReview(adminID int64, sess ReviewSession) {
	if sess.Selected == nil {
		sess.Selected = capability.Set{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[adminID] = &sess
}

// Review returns a copy of the admin's active session.
func (s *Sessions) Review(adminID int64) (ReviewSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.reviews[adminID]
	if !ok {
		return ReviewSession{}, false
	}
	return snapshot(sess), true
}

// Toggle flips one capability toggle.  Only capabilities that were actually
// requested can be toggled; anything else is ignored and reported false.
func (s *Sessions) Toggle(adminID int64, name string) (ReviewSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.reviews[adminID]
	if !ok || !sess.Requested.Has(name) {
		return ReviewSession{}, false
	}
	sess.Selected[name] = !sess.Selected[name]
	return snapshot(sess), true
}

// EndReview discards the admin's active session (confirm or cancel).
func (s *Sessions) EndReview(adminID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reviews, adminID)
}

// SetPending stores the pending-list snapshot taken at listing time.
func (s *Sessions) SetPending(adminID int64, list []model.PendingApplication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[adminID] = list
}

// Pick resolves a 1-based numeric pick against the stored snapshot.  A stale
// or out-of-range pick returns false; the caller should re-list.
func (s *Sessions) Pick(adminID int64, idx int) (model.PendingApplication, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.pending[adminID]
	if idx < 1 || idx > len(list) {
		return model.PendingApplication{}, false
	}
	return list[idx-1], true
}

func snapshot(sess *ReviewSession) ReviewSession {
	out := *sess
	out.Requested = sess.Requested.Merge(nil)
	out.Selected = sess.Selected.Merge(nil)
	return out
}
