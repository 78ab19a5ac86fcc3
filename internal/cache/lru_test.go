package cache

import (
	"fmt"
	"testing"
)

func TestLRU_CapacityBound(t *testing.T) {
	const capacity = 8
	const extra = 5

	c := NewLRU[string, int](capacity, nil)
	for i := 0; i < capacity+extra; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
	}

	if c.Len() != capacity {
		t.Fatalf("expected %d entries after overflow, got %d", capacity, c.Len())
	}

	// The survivors must be the most recently touched keys.
	for i := extra; i < capacity+extra; i++ {
		if !c.Contains(fmt.Sprintf("key-%d", i)) {
			t.Errorf("expected key-%d to survive", i)
		}
	}
	for i := 0; i < extra; i++ {
		if c.Contains(fmt.Sprintf("key-%d", i)) {
			t.Errorf("expected key-%d to be evicted", i)
		}
	}
}

func TestLRU_EvictionOrderFollowsRecency(t *testing.T) {
	var evicted []string
	c := NewLRU[string, int](2, func(k string, _ int) {
		evicted = append(evicted, k)
	})

	c.Set("A", 1)
	c.Set("B", 2)
	c.Set("C", 3) // evicts A

	if _, ok := c.Get("C"); !ok {
		t.Fatal("expected C present")
	}
	if _, ok := c.Get("A"); ok {
		t.Fatal("expected A evicted at capacity")
	}

	// Reset to the documented scenario: touch A promotes it over B.
	evicted = nil
	c.Clear()
	c.Set("A", 1)
	c.Set("B", 2)
	if _, ok := c.Get("A"); !ok {
		t.Fatal("expected A present before touch")
	}
	c.Set("C", 3) // B is now the oldest
	c.Set("D", 4) // then C

	if len(evicted) != 2 || evicted[0] != "B" || evicted[1] != "C" {
		t.Fatalf("expected eviction order [B C], got %v", evicted)
	}
	if !c.Contains("A") || !c.Contains("D") {
		t.Fatalf("expected {A, D} to remain")
	}
}

func TestLRU_SetOverwritesAndPromotes(t *testing.T) {
	c := NewLRU[string, int](2, nil)
	c.Set("A", 1)
	c.Set("B", 2)
	c.Set("A", 10) // overwrite, A becomes most recent
	c.Set("C", 3)  // evicts B

	if v, ok := c.Get("A"); !ok || v != 10 {
		t.Fatalf("expected A=10, got %d (present=%v)", v, ok)
	}
	if c.Contains("B") {
		t.Fatal("expected B evicted after A was promoted")
	}
}

func TestLRU_DeleteAndClear(t *testing.T) {
	c := NewLRU[string, int](4, nil)
	c.Set("A", 1)
	c.Set("B", 2)

	c.Delete("A")
	if c.Contains("A") {
		t.Fatal("expected A gone after delete")
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after clear, got %d entries", c.Len())
	}
}
