package recent

import (
	"fmt"
	"sync"
	"testing"
)

func TestRememberIsIdempotent(t *testing.T) {
	c := New(4)
	c.Remember("a")
	c.Remember("a")
	if !c.Seen("a") {
		t.Fatalf("expected a to be seen")
	}
	if c.Len() != 1 {
		t.Fatalf("expected len 1, got %d", c.Len())
	}
}

func TestEvictsOldestFirst(t *testing.T) {
	c := New(3)
	for _, id := range []string{"a", "b", "c", "d"} {
		c.Remember(id)
	}
	if c.Seen("a") {
		t.Fatalf("expected a to be evicted")
	}
	for _, id := range []string{"b", "c", "d"} {
		if !c.Seen(id) {
			t.Fatalf("expected %s to be remembered", id)
		}
	}
	got := c.Snapshot()
	want := []string{"b", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSizeNeverExceedsCapacity(t *testing.T) {
	c := New(8)
	for i := range 100 {
		c.Remember(fmt.Sprintf("id-%d", i%13))
		if c.Len() > c.Cap() {
			t.Fatalf("len %d exceeds cap %d", c.Len(), c.Cap())
		}
	}
}

func TestAdmit(t *testing.T) {
	c := New(2)
	if !c.Admit("x") {
		t.Fatalf("first admit should succeed")
	}
	if c.Admit("x") {
		t.Fatalf("second admit should be rejected")
	}
}

func TestAdmitConcurrent(t *testing.T) {
	c := New(64)
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Admit("same") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if admitted != 1 {
		t.Fatalf("expected exactly one admit, got %d", admitted)
	}
}

func TestDefaultSize(t *testing.T) {
	if New(0).Cap() != DefaultSize {
		t.Fatalf("expected default capacity %d", DefaultSize)
	}
}
