package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/avdeev/script-access/internal/cache"
	"github.com/avdeev/script-access/internal/model"
	"github.com/avdeev/script-access/internal/repository"
)

// BanService maintains the deny list.  A ban persists first, then updates
// the in-memory registry and scrubs the user's access record and cache
// entry, so a half-applied ban fails toward "still allowed in memory"
// rather than "denied without a row to appeal against".
type BanService struct {
	bans     BanStore
	records  AccessStore
	registry *cache.BanRegistry
	cache    *cache.AccessCache
	notify   Notifier
}

func NewBanService(bans BanStore, records AccessStore, registry *cache.BanRegistry, c *cache.AccessCache, notify Notifier) *BanService {
	return &BanService{bans: bans, records: records, registry: registry, cache: c, notify: notify}
}

// Ban denies the user, removes their access record, and notifies both
// sides.  Banning an already-banned user returns ErrAlreadyBanned without
// re-notifying anyone.
func (s *BanService) Ban(ctx context.Context, userID int64, reason string) error {
	if s.registry.Has(userID) {
		return ErrAlreadyBanned
	}
	if err := s.bans.Insert(ctx, userID, reason); err != nil {
		return err
	}
	if !s.registry.Add(userID) {
		// Lost a race with a concurrent ban; the row exists, nothing else
		// to do and nobody to notify twice.
		return ErrAlreadyBanned
	}
	// Best effort from here on: the ban itself is already durable.
	if err := s.records.Delete(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("ban: deleting access record for %d: %v", userID, err)
	}
	s.cache.Invalidate(userID)
	if err := s.notify.NotifyUser(ctx, userID, "banned", reason); err != nil {
		log.Printf("ban: notifying user %d: %v", userID, err)
	}
	if err := s.notify.NotifyAdmin(ctx, "ban_applied", fmt.Sprintf("user %d banned: %s", userID, reason), ""); err != nil {
		log.Printf("ban: notifying admin about %d: %v", userID, err)
	}
	return nil
}

// Unban lifts a ban.  ErrNotBanned when the user is not on the deny list.
func (s *BanService) Unban(ctx context.Context, userID int64) error {
	if !s.registry.Has(userID) {
		return ErrNotBanned
	}
	if err := s.bans.Delete(ctx, userID); err != nil {
		return err
	}
	s.registry.Remove(userID)
	if err := s.notify.NotifyUser(ctx, userID, "unbanned", ""); err != nil {
		log.Printf("unban: notifying user %d: %v", userID, err)
	}
	return nil
}

// Appeal forwards a banned user's appeal text to the admin together with
// the recorded ban reason.  Only banned users may appeal.
func (s *BanService) Appeal(ctx context.Context, userID int64, text string) error {
	if !s.registry.Has(userID) {
		return ErrNotBanned
	}
	reason, err := s.bans.Reason(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		reason = "unknown"
	} else if err != nil {
		return err
	}
	content := fmt.Sprintf("appeal from %d (banned for: %s): %s", userID, reason, text)
	return s.notify.NotifyAdmin(ctx, "ban_appeal", content, "")
}

// IsBanned answers from the in-memory registry.
func (s *BanService) IsBanned(userID int64) bool {
	return s.registry.Has(userID)
}

// List returns the full deny list from the store.
func (s *BanService) List(ctx context.Context) ([]model.BanEntry, error) {
	return s.bans.List(ctx)
}
