package util

import (
	"testing"
	"time"
)

func TestLRUEviction(t *testing.T) {
	lru, err := NewLRU[string, int](2, 0)
	if err != nil {
		t.Fatalf("NewLRU() error = %v", err)
	}

	lru.Put("a", 1)
	lru.Put("b", 2)
	lru.Get("a") // a is now most recently used
	lru.Put("c", 3)

	if _, ok := lru.Get("b"); ok {
		t.Error("b should have been evicted as least recently used")
	}
	if v, ok := lru.Get("a"); !ok || v != 1 {
		t.Errorf("a = %d/%v, want 1/true", v, ok)
	}
	if v, ok := lru.Get("c"); !ok || v != 3 {
		t.Errorf("c = %d/%v, want 3/true", v, ok)
	}
	if lru.Len() != 2 {
		t.Errorf("Len() = %d, want 2", lru.Len())
	}
}

func TestLRUUpdateExisting(t *testing.T) {
	lru, _ := NewLRU[string, int](2, 0)

	lru.Put("a", 1)
	lru.Put("a", 2)

	if v, _ := lru.Get("a"); v != 2 {
		t.Errorf("a = %d, want the updated value 2", v)
	}
	if lru.Len() != 1 {
		t.Errorf("Len() = %d, want 1", lru.Len())
	}
}

func TestLRUTTLExpiry(t *testing.T) {
	lru, _ := NewLRU[string, int](10, 10*time.Millisecond)

	lru.Put("a", 1)
	if _, ok := lru.Get("a"); !ok {
		t.Fatal("a should be present before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := lru.Get("a"); ok {
		t.Error("a should have expired")
	}
}

func TestLRUInvalidCapacity(t *testing.T) {
	if _, err := NewLRU[string, int](0, 0); err == nil {
		t.Error("expected an error for non-positive capacity")
	}
}
