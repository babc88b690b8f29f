package cache

import (
	"strconv"
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)

	for i := 0; i < 4; i++ {
		c.Set("k"+strconv.Itoa(i), i)
	}

	if _, found := c.Get("k0"); found {
		t.Fatalf("oldest entry survived past capacity")
	}
	for i := 1; i < 4; i++ {
		if v, found := c.Get("k" + strconv.Itoa(i)); !found || v != i {
			t.Fatalf("k%d = %d, found %v", i, v, found)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
}

func TestLRUCacheRecencyOrder(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // a is now most recent
	c.Set("c", "3")

	if _, found := c.Get("b"); found {
		t.Fatalf("least recently used entry survived")
	}
	if _, found := c.Get("a"); !found {
		t.Fatalf("recently used entry evicted")
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("k", 42)
	if _, found := c.Get("k"); !found {
		t.Fatalf("fresh entry not found")
	}

	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Fatalf("expired entry served")
	}
	c.Set("k", 42)
	time.Sleep(20 * time.Millisecond)
	if cleaned := c.CleanExpired(); cleaned != 1 {
		t.Fatalf("CleanExpired() = %d, want 1", cleaned)
	}
}

func TestLRUCachePurge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()

	if c.Len() != 0 {
		t.Fatalf("Len() after purge = %d", c.Len())
	}
	if _, found := c.Get("a"); found {
		t.Fatalf("purged entry served")
	}
}
