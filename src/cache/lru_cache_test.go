package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCacheBasic(t *testing.T) {
	c := NewLRUCache(3, time.Hour)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	if got, ok := c.Get("a"); !ok || got != "1" {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}

	// "a" was just touched, so adding "d" should evict "b".
	c.Set("d", "4")
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if got, ok := c.Get("d"); !ok || got != "4" {
		t.Fatalf("Get(d) = %q, %v", got, ok)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
}

func TestLRUCacheTTLExpiry(t *testing.T) {
	c := NewLRUCache(10, 10*time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after expiry read, want 0", c.Len())
	}
}

func TestLRUCacheRemove(t *testing.T) {
	c := NewLRUCache(3, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be removed")
	}
	if got, ok := c.Get("b"); !ok || got != "2" {
		t.Fatalf("Get(b) = %q, %v", got, ok)
	}
	c.Remove("missing") // no-op
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestLRUCacheDumpRestore(t *testing.T) {
	c := NewLRUCache(5, time.Hour)
	c.Set("x", "1")
	c.Set("y", "2")

	dump := c.Dump()
	if len(dump) != 2 {
		t.Fatalf("Dump() returned %d entries, want 2", len(dump))
	}

	restored := NewLRUCache(5, time.Hour)
	restored.Restore(dump)
	if got, ok := restored.Get("y"); !ok || got != "2" {
		t.Fatalf("restored Get(y) = %q, %v", got, ok)
	}
}

func TestLRUCacheRestoreEnforcesCapacity(t *testing.T) {
	dump := make(map[string]Entry)
	for i := 0; i < 10; i++ {
		dump[fmt.Sprintf("k%d", i)] = Entry{Response: "v", ExpiresAt: time.Now().Add(time.Hour)}
	}
	c := NewLRUCache(4, time.Hour)
	c.Restore(dump)
	if c.Len() != 4 {
		t.Fatalf("Len() = %d after restore, want 4", c.Len())
	}
}

func TestHashKeyStable(t *testing.T) {
	if HashKey("prompt") != HashKey("prompt") {
		t.Fatal("HashKey not deterministic")
	}
	if HashKey("a") == HashKey("b") {
		t.Fatal("distinct prompts produced the same key")
	}
}
