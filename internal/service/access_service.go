package service

import (
	"context"
	"errors"

	"github.com/avdeev/script-access/internal/capability"
	"github.com/avdeev/script-access/internal/cache"
	"github.com/avdeev/script-access/internal/repository"
)

// AccessService answers every authorization question the rest of the system
// asks.  Reads go cache-first; a miss falls through to the store via the
// retry layer, runs the raw value through the codec, and repopulates the
// cache.  A banned user short-circuits to "no access" before anything else
// is consulted.
type AccessService struct {
	records AccessStore
	cache   *cache.AccessCache
	bans    *cache.BanRegistry
}

func NewAccessService(records AccessStore, c *cache.AccessCache, bans *cache.BanRegistry) *AccessService {
	return &AccessService{records: records, cache: c, bans: bans}
}

// ApprovedUser is one row of the approved listing.
type ApprovedUser struct {
	Nickname string
	UserID   int64
	Access   capability.Set
}

// Capabilities returns the user's decoded capability set, or nil when the
// user has no access (unknown, pending, cleared, or banned).  The only
// error it can return is repository.ErrUnavailable.
func (s *AccessService) Capabilities(ctx context.Context, userID int64) (capability.Set, error) {
	if s.bans.Has(userID) {
		return nil, nil
	}
	if e, ok := s.cache.Get(userID); ok {
		return e.Access, nil
	}
	rec, err := s.records.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	set := capability.Decode(rec.Approved)
	if set == nil {
		// Pending or cleared grant; nothing to cache, per the fail-closed
		// empty-grant policy.
		return nil, nil
	}
	s.cache.Put(userID, rec.Nickname, set)
	return set, nil
}

// HasCapability reports whether the user holds the named capability.
func (s *AccessService) HasCapability(ctx context.Context, userID int64, name string) (bool, error) {
	set, err := s.Capabilities(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.Has(name), nil
}

// ApprovedNickname returns the nickname of a user with any active grant, or
// "" when there is none.
func (s *AccessService) ApprovedNickname(ctx context.Context, userID int64) (string, error) {
	if s.bans.Has(userID) {
		return "", nil
	}
	if e, ok := s.cache.Get(userID); ok {
		return e.Nickname, nil
	}
	rec, err := s.records.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	set := capability.Decode(rec.Approved)
	if set == nil {
		return "", nil
	}
	s.cache.Put(userID, rec.Nickname, set)
	return rec.Nickname, nil
}

// Missing returns the known capabilities the user does not hold yet.  The
// second value is the user's current set, so callers gating the
// additional-access flow get both answers in one trip.
func (s *AccessService) Missing(ctx context.Context, userID int64) ([]string, capability.Set, error) {
	set, err := s.Capabilities(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return set.Missing(), set, nil
}

// ListApproved returns every user holding a grant, filtered to one
// capability when filter is non-empty.
func (s *AccessService) ListApproved(ctx context.Context, filter string) ([]ApprovedUser, error) {
	recs, err := s.records.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	var out []ApprovedUser
	for _, rec := range recs {
		set := capability.Decode(rec.Approved)
		if set == nil {
			continue
		}
		if filter != "" && !set.Has(filter) {
			continue
		}
		out = append(out, ApprovedUser{Nickname: rec.Nickname, UserID: rec.UserID.Int64, Access: set})
	}
	return out, nil
}
