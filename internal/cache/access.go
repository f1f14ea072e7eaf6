// Package cache holds the process-wide mutable state that shields the
// database from read pressure: the TTL-bounded access cache and the ban
// registry.  Both are plain injectable values constructed once in main and
// passed to the services; neither is ever the system of record.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/avdeev/script-access/internal/capability"
)

// Entry is one cached authorization snapshot.
type Entry struct {
	Nickname string
	Access   capability.Set
}

// AccessCache maps a transport user id to its approved nickname and decoded
// capability set.  Entries expire after the configured TTL and the cache
// evicts oldest-first once the size bound is reached.  It must only be
// written after the corresponding database mutation is confirmed.
type AccessCache struct {
	lru *expirable.LRU[int64, Entry]
}

// NewAccessCache creates a cache holding at most maxEntries entries, each
// valid for ttl after insertion.
func NewAccessCache(maxEntries int, ttl time.Duration) *AccessCache {
	return &AccessCache{lru: expirable.NewLRU[int64, Entry](maxEntries, nil, ttl)}
}

// Get returns the cached entry for userID, or ok=false on a miss (absent or
// expired).
func (c *AccessCache) Get(userID int64) (Entry, bool) {
	return c.lru.Get(userID)
}

// Put inserts or overwrites the entry for userID with a fresh expiry.
func (c *AccessCache) Put(userID int64, nickname string, access capability.Set) {
	c.lru.Add(userID, Entry{Nickname: nickname, Access: access})
}

// Invalidate removes the entry for userID immediately.  Used on revoke,
// delete and ban so a stale grant cannot be served before the next store
// round-trip.
func (c *AccessCache) Invalidate(userID int64) {
	c.lru.Remove(userID)
}

// InvalidateByNickname removes every entry whose snapshot carries the given
// nickname.  Needed by admin operations that address users by nickname.
func (c *AccessCache) InvalidateByNickname(nickname string) {
	for _, id := range c.lru.Keys() {
		if e, ok := c.lru.Peek(id); ok && e.Nickname == nickname {
			c.lru.Remove(id)
		}
	}
}

// Len returns the current entry count.
func (c *AccessCache) Len() int {
	return c.lru.Len()
}
