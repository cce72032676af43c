package csync

import (
	"sync"
	"testing"
)

func TestMapBasicOps(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)

	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}

	m.Del("a")
	if _, ok := m.Get("a"); ok {
		t.Fatal("key a still present after Del")
	}

	if v, ok := m.Take("b"); !ok || v != 2 {
		t.Fatalf("Take(b) = %d, %v", v, ok)
	}
	if m.Len() != 0 {
		t.Fatalf("Len = %d after Take, want 0", m.Len())
	}
}

func TestMapGetOrSet(t *testing.T) {
	m := NewMap[string, int]()
	calls := 0
	mk := func() int { calls++; return 7 }

	if v := m.GetOrSet("k", mk); v != 7 {
		t.Fatalf("GetOrSet = %d, want 7", v)
	}
	if v := m.GetOrSet("k", mk); v != 7 {
		t.Fatalf("GetOrSet second call = %d, want 7", v)
	}
	if calls != 1 {
		t.Fatalf("factory ran %d times, want 1", calls)
	}
}

func TestMapConcurrentAccess(t *testing.T) {
	m := NewMap[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Set(i, i*i)
			m.Get(i)
			m.Range(func(int, int) bool { return true })
		}(i)
	}
	wg.Wait()
	if m.Len() != 50 {
		t.Fatalf("Len = %d, want 50", m.Len())
	}
}
