package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avdeev/script-access/internal/capability"
)

func TestAccessCachePutGet(t *testing.T) {
	c := NewAccessCache(10, time.Minute)

	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Put(1, "Ivan_Petrov", capability.Set{capability.Mine: true})
	e, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "Ivan_Petrov", e.Nickname)
	assert.True(t, e.Access.Has(capability.Mine))
}

func TestAccessCacheExpiry(t *testing.T) {
	c := NewAccessCache(10, 20*time.Millisecond)
	c.Put(1, "Ivan_Petrov", capability.Set{capability.Mine: true})
	time.Sleep(40 * time.Millisecond)
	_, ok := c.Get(1)
	assert.False(t, ok, "expired entry must read as a miss")
}

func TestAccessCacheBound(t *testing.T) {
	const max = 5
	c := NewAccessCache(max, time.Minute)
	for i := int64(0); i < max+1; i++ {
		c.Put(i, "Nick_Name", nil)
	}
	assert.LessOrEqual(t, c.Len(), max)
	// The newest entry survives the eviction.
	_, ok := c.Get(max)
	assert.True(t, ok)
}

func TestAccessCacheInvalidate(t *testing.T) {
	c := NewAccessCache(10, time.Minute)
	c.Put(1, "Ivan_Petrov", capability.Set{capability.Mine: true})
	c.Put(2, "Petr_Ivanov", capability.Set{capability.Oskolki: true})

	c.Invalidate(1)
	_, ok := c.Get(1)
	assert.False(t, ok)
	_, ok = c.Get(2)
	assert.True(t, ok)

	c.InvalidateByNickname("Petr_Ivanov")
	_, ok = c.Get(2)
	assert.False(t, ok)
}

func TestBanRegistryIdempotent(t *testing.T) {
	r := NewBanRegistry()
	assert.True(t, r.Add(7), "first ban is a state change")
	assert.False(t, r.Add(7), "second ban is a no-op")
	assert.True(t, r.Has(7))
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Remove(7))
	assert.False(t, r.Remove(7))
	assert.False(t, r.Has(7))
}
