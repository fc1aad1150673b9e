package cache

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Cache[int] = (*LRUCache[int])(nil)
	_ Cache[int] = (*MemcacheCache[int])(nil)
)

func TestLRUCache_GetSetDelete(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "1")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	c.Set("a", "2")
	v, _ = c.Get("a")
	assert.Equal(t, "2", v)
	assert.Equal(t, 1, c.Size())

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
	c.Delete("missing")
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.True(t, okA)
	assert.False(t, okB, "b was least recently used")
	assert.True(t, okC)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_TTL(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute)
	c.now = func() time.Time { return clock }

	c.Set("a", 1)
	c.Set("b", 2)
	clock = clock.Add(30 * time.Second)
	c.Set("c", 3)

	clock = clock.Add(45 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok, "expired on read")

	assert.Equal(t, 1, c.CleanExpired(), "b expired, c still fresh")
	assert.Equal(t, 1, c.Size())
}

func TestLRUCache_Concurrent(t *testing.T) {
	c := NewLRUCache[int](50, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (i+j)%80)
				c.Set(key, j)
				c.Get(key)
				if j%10 == 0 {
					c.Delete(key)
				}
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Size(), 50)
}

func TestManager_CleansRegisteredCaches(t *testing.T) {
	c := NewLRUCache[int](10, time.Nanosecond)
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)
	defer m.Stop()

	assert.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)
}

// Runs only against a live server: MEMCACHED_TEST_HOSTS=localhost:11211
func TestMemcacheCache_Integration(t *testing.T) {
	hosts := os.Getenv("MEMCACHED_TEST_HOSTS")
	if hosts == "" {
		t.Skip("MEMCACHED_TEST_HOSTS not set")
	}
	type payload struct {
		Name  string
		Count int
	}
	c, err := NewMemcache[payload](strings.Split(hosts, ","), "costs-test:", time.Minute, nil)
	require.NoError(t, err)

	key := fmt.Sprintf("k%d", time.Now().UnixNano())
	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, payload{Name: "x", Count: 2})
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, payload{Name: "x", Count: 2}, got)

	c.Delete(key)
	_, ok = c.Get(key)
	assert.False(t, ok)
}
