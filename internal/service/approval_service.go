package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/avdeev/script-access/internal/capability"
	"github.com/avdeev/script-access/internal/cache"
	"github.com/avdeev/script-access/internal/model"
	"github.com/avdeev/script-access/internal/repository"
	"github.com/avdeev/script-access/internal/session"
	"github.com/avdeev/script-access/internal/utils"
)

// Decision is the admin's verdict on an application.
type Decision int

const (
	GrantAll Decision = iota
	GrantSubset
	Reject
	BanApplicant
)

const minDescriptionLen = 3

// ApprovalService runs the application and review workflows.  Every
// decision re-fetches the record before merging so a verdict taken from a
// stale review screen never clobbers capabilities granted in between.
// Decisions about the same user are serialized through a per-user lock.
type ApprovalService struct {
	records  AccessStore
	cache    *cache.AccessCache
	registry *cache.BanRegistry
	bans     *BanService
	sessions *session.Sessions
	notify   Notifier

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewApprovalService(records AccessStore, c *cache.AccessCache, registry *cache.BanRegistry, bans *BanService, sessions *session.Sessions, notify Notifier) *ApprovalService {
	return &ApprovalService{
		records:  records,
		cache:    c,
		registry: registry,
		bans:     bans,
		sessions: sessions,
		notify:   notify,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// userLock returns the mutex serializing decisions about one user.
func (s *ApprovalService) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// FileApplication records a new access application.  The nickname must
// match the expected shape, the description must carry some substance, and
// the requested set must be non-empty and known.  Users with an active
// grant or a pending application are turned away with the matching
// sentinel.
func (s *ApprovalService) FileApplication(ctx context.Context, userID int64, nickname, description string, requested []string) error {
	if s.registry.Has(userID) {
		return ErrBanned
	}
	if !utils.ValidNickname(nickname) {
		return ErrInvalidNickname
	}
	if len(description) < minDescriptionLen {
		return ErrShortDescription
	}
	if len(requested) == 0 {
		return ErrEmptySelection
	}
	for _, name := range requested {
		if !capability.IsKnown(name) {
			return ErrUnknownCapability
		}
	}

	rec, err := s.records.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err == nil {
		if capability.Decode(rec.Approved) != nil {
			return ErrAlreadyApproved
		}
		if rec.Requested.Valid && rec.Requested.String != "" {
			return ErrAlreadyPending
		}
	}

	set := capability.FromNames(requested)
	if err := s.records.UpsertApplication(ctx, nickname, userID, capability.Encode(set)); err != nil {
		return err
	}
	content := fmt.Sprintf("application from %s (%d): %s", nickname, userID, description)
	if err := s.notify.NotifyAdmin(ctx, "new_application", content, capability.Flags(set)); err != nil {
		log.Printf("application: notifying admin about %d: %v", userID, err)
	}
	return nil
}

// Decide applies the admin's verdict on the user's pending application.
// selected is consulted only for GrantSubset; reason travels with Reject and
// BanApplicant.  A verdict on an application someone already handled returns
// ErrAlreadyHandled.
func (s *ApprovalService) Decide(ctx context.Context, userID int64, verdict Decision, selected capability.Set, reason string) error {
	if verdict == BanApplicant {
		return s.bans.Ban(ctx, userID, reason)
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.records.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAlreadyHandled
	}
	if err != nil {
		return err
	}
	requested := capability.Decode(rec.Requested)
	if requested == nil {
		// Another admin got there first.
		return ErrAlreadyHandled
	}

	switch verdict {
	case GrantAll:
		return s.grant(ctx, rec.Nickname, userID, requested)
	case GrantSubset:
		if !selected.Any() {
			return ErrEmptySelection
		}
		for name := range selected {
			if !selected[name] {
				continue
			}
			if !requested.Has(name) {
				return ErrUnknownCapability
			}
		}
		return s.grant(ctx, rec.Nickname, userID, selected)
	case Reject:
		if capability.Decode(rec.Approved) != nil {
			// Rejecting an additional-access request only drops the pending
			// set; the existing grant stays untouched.
			if err := s.records.ClearRequested(ctx, userID); err != nil {
				return err
			}
		} else {
			if err := s.records.Delete(ctx, userID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrAlreadyHandled
				}
				return err
			}
			s.cache.Invalidate(userID)
		}
		if err := s.notify.NotifyUser(ctx, userID, "rejected", reason); err != nil {
			log.Printf("decide: notifying rejected user %d: %v", userID, err)
		}
		return nil
	}
	return fmt.Errorf("unknown verdict %d", verdict)
}

// grant merges the granted set into whatever the user already holds, writes
// it back, and refreshes the cache.  Called with the user's lock held.
func (s *ApprovalService) grant(ctx context.Context, nickname string, userID int64, granted capability.Set) error {
	rec, err := s.records.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	merged := capability.Decode(rec.Approved).Merge(granted)
	if err := s.records.SetApproved(ctx, userID, capability.Encode(merged)); err != nil {
		return err
	}
	s.cache.Put(userID, nickname, merged)
	if err := s.notify.NotifyUser(ctx, userID, "granted", capability.Flags(merged)); err != nil {
		log.Printf("grant: notifying user %d: %v", userID, err)
	}
	return nil
}

// FileAdditionalRequest files a request for capabilities on top of an
// existing grant.  Only users with an active grant may file, and only for
// capabilities they do not hold yet.
func (s *ApprovalService) FileAdditionalRequest(ctx context.Context, userID int64, names []string) error {
	if s.registry.Has(userID) {
		return ErrBanned
	}
	rec, err := s.records.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNoAccess
	}
	if err != nil {
		return err
	}
	current := capability.Decode(rec.Approved)
	if current == nil {
		return ErrNoAccess
	}
	if len(names) == 0 {
		return ErrEmptySelection
	}
	for _, name := range names {
		if !capability.IsKnown(name) {
			return ErrUnknownCapability
		}
		if current.Has(name) {
			return ErrNothingMissing
		}
	}
	set := capability.FromNames(names)
	if err := s.records.SetRequested(ctx, userID, capability.Encode(set)); err != nil {
		return err
	}
	content := fmt.Sprintf("additional access request from %s (%d)", rec.Nickname, userID)
	if err := s.notify.NotifyAdmin(ctx, "additional_request", content, capability.Flags(set)); err != nil {
		log.Printf("additional: notifying admin about %d: %v", userID, err)
	}
	return nil
}

// RevokeOwnNickname removes the caller's own record entirely.
func (s *ApprovalService) RevokeOwnNickname(ctx context.Context, userID int64) error {
	if err := s.records.Delete(ctx, userID); err != nil {
		return err
	}
	s.cache.Invalidate(userID)
	return nil
}

// RevokeCapability removes a single capability from the named user's
// grant.  A grant that ends up empty is stored as the canonical empty
// encoding, which decodes back to "no access".
func (s *ApprovalService) RevokeCapability(ctx context.Context, nickname, name string) error {
	if !capability.IsKnown(name) {
		return ErrUnknownCapability
	}
	rec, err := s.records.GetByNickname(ctx, nickname)
	if err != nil {
		return err
	}
	current := capability.Decode(rec.Approved)
	if !current.Has(name) {
		return ErrNotGranted
	}
	remaining := current.Merge(nil)
	remaining[name] = false
	if err := s.records.SetApprovedByNickname(ctx, nickname, capability.Encode(remaining)); err != nil {
		return err
	}
	if rec.UserID.Valid {
		s.cache.Invalidate(rec.UserID.Int64)
	}
	s.cache.InvalidateByNickname(nickname)
	return nil
}

// ManualAdd records a fully-approved nickname without a workflow run.
func (s *ApprovalService) ManualAdd(ctx context.Context, nickname string) error {
	if !utils.ValidNickname(nickname) {
		return ErrInvalidNickname
	}
	if err := s.records.InsertManual(ctx, nickname); err != nil {
		return err
	}
	s.cache.InvalidateByNickname(nickname)
	return nil
}

// ManualDelete removes a record by nickname.
func (s *ApprovalService) ManualDelete(ctx context.Context, nickname string) error {
	rec, err := s.records.GetByNickname(ctx, nickname)
	if err != nil {
		return err
	}
	if err := s.records.DeleteByNickname(ctx, nickname); err != nil {
		return err
	}
	if rec.UserID.Valid {
		s.cache.Invalidate(rec.UserID.Int64)
	}
	s.cache.InvalidateByNickname(nickname)
	return nil
}

// PendingSnapshot loads the pending applications and pins the ordered list
// for the admin, so later picks by position stay stable even as new
// applications arrive.
func (s *ApprovalService) PendingSnapshot(ctx context.Context, adminID int64) ([]model.PendingApplication, error) {
	items, err := s.records.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	s.sessions.SetPending(adminID, items)
	return items, nil
}

// PendingPick resolves a 1-based position against the admin's pinned
// snapshot.  ErrStaleList when the snapshot is gone or the position is out
// of range.
func (s *ApprovalService) PendingPick(adminID int64, position int) (model.PendingApplication, error) {
	item, ok := s.sessions.Pick(adminID, position)
	if !ok {
		return model.PendingApplication{}, ErrStaleList
	}
	return item, nil
}

// StartReview opens a review session over the user's pending application
// and returns it for rendering.
func (s *ApprovalService) StartReview(ctx context.Context, adminID, userID int64) (session.ReviewSession, error) {
	rec, err := s.records.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return session.ReviewSession{}, ErrAlreadyHandled
	}
	if err != nil {
		return session.ReviewSession{}, err
	}
	requested := capability.Decode(rec.Requested)
	if requested == nil {
		return session.ReviewSession{}, ErrAlreadyHandled
	}
	sess := session.ReviewSession{
		UserID:     userID,
		Nickname:   rec.Nickname,
		Requested:  requested,
		Additional: capability.Decode(rec.Approved) != nil,
	}
	s.sessions.StartReview(adminID, sess)
	return sess, nil
}

// Toggle flips one capability in the admin's current selection.
func (s *ApprovalService) Toggle(adminID int64, name string) (session.ReviewSession, error) {
	rs, ok := s.sessions.Toggle(adminID, name)
	if !ok {
		return session.ReviewSession{}, ErrNoSession
	}
	return rs, nil
}

// ConfirmReview applies the selection built up in the admin's review
// session as a subset grant.
func (s *ApprovalService) ConfirmReview(ctx context.Context, adminID int64) error {
	rs, ok := s.sessions.Review(adminID)
	if !ok {
		return ErrNoSession
	}
	err := s.Decide(ctx, rs.UserID, GrantSubset, rs.Selected, "")
	if err == nil || errors.Is(err, ErrAlreadyHandled) {
		s.sessions.EndReview(adminID)
	}
	return err
}

// CancelReview drops the admin's review session without a verdict.
func (s *ApprovalService) CancelReview(adminID int64) {
	s.sessions.EndReview(adminID)
}
