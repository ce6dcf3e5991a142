package cache

import (
	"errors"
	"testing"
)

func TestLRUEvictsLeastRecent(t *testing.T) {
	c := New[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)
	if _, ok := c.Get("a"); !ok { // a becomes MRU
		t.Fatal("a missing")
	}
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("a = %v, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestGetOrLoad(t *testing.T) {
	c := New[string, int](4)
	calls := 0
	load := func(k string) (int, error) {
		calls++
		if k == "bad" {
			return 0, errors.New("nope")
		}
		return len(k), nil
	}

	for range 3 {
		if v, err := c.GetOrLoad("four", load); err != nil || v != 4 {
			t.Fatalf("GetOrLoad = %v, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("loader called %d times", calls)
	}
	if _, err := c.GetOrLoad("bad", load); err == nil {
		t.Fatal("error not returned")
	}
	if _, ok := c.Get("bad"); ok {
		t.Fatal("error result cached")
	}
}
