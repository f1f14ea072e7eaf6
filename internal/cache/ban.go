package cache

import "sync"

// BanRegistry is the in-memory set of banned user ids, loaded from the
// database at startup and kept in sync by the ban service.  A user present
// here is treated as having zero capabilities everywhere except the
// ban-appeal path, regardless of what the access cache or store say.
// Entries never expire on their own, which is why this is a plain set and
// not another TTL cache.
type BanRegistry struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

// NewBanRegistry returns an empty registry.
func NewBanRegistry() *BanRegistry {
	return &BanRegistry{ids: make(map[int64]struct{})}
}

// Add marks userID as banned.  It returns false when the user was already
// present, letting callers keep ban idempotent without a second lookup.
func (r *BanRegistry) Add(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[userID]; ok {
		return false
	}
	r.ids[userID] = struct{}{}
	return true
}

// Remove clears the ban mark.  Returns false when the user was not banned.
func (r *BanRegistry) Remove(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[userID]; !ok {
		return false
	}
	delete(r.ids, userID)
	return true
}

// Has reports whether userID is banned.
func (r *BanRegistry) Has(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[userID]
	return ok
}

// Len returns the number of banned users.
func (r *BanRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}
