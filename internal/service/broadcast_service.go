package service

import (
	"context"
	"log"

	"github.com/avdeev/script-access/internal/cache"
)

// BroadcastService fans an admin announcement out to users.  Delivery goes
// through the notifier one user at a time; a failed delivery is counted and
// skipped, never aborting the run.
type BroadcastService struct {
	records  AccessStore
	registry *cache.BanRegistry
	notify   Notifier
}

func NewBroadcastService(records AccessStore, registry *cache.BanRegistry, notify Notifier) *BroadcastService {
	return &BroadcastService{records: records, registry: registry, notify: notify}
}

// Send delivers content to the given user ids, or to every known user when
// targets is empty.  Banned users are skipped.  Returns how many deliveries
// succeeded and how many failed.
func (s *BroadcastService) Send(ctx context.Context, content string, targets []int64) (sent, failed int, err error) {
	if content == "" {
		return 0, 0, ErrShortDescription
	}
	if len(targets) == 0 {
		targets, err = s.records.ListUserIDs(ctx)
		if err != nil {
			return 0, 0, err
		}
	}
	for _, id := range targets {
		if s.registry.Has(id) {
			continue
		}
		if err := s.notify.NotifyUser(ctx, id, "broadcast", content); err != nil {
			log.Printf("broadcast: delivery to %d failed: %v", id, err)
			failed++
			continue
		}
		sent++
	}
	return sent, failed, nil
}
