package store

import (
	"testing"
	"time"

	"github.com/krisalay/querycache/types"
)

func keys(s Store) []string {
	var out []string
	s.Range(func(e *types.Entry) bool {
		out = append(out, e.Key)
		return true
	})
	return out
}

func put(s Store, k string) {
	s.Put(k, &types.Entry{Key: k, Timestamp: time.Unix(0, 0)})
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOrderedStore(t *testing.T) {
	t.Run("insertion order", func(t *testing.T) {
		s := NewOrderedStore()
		put(s, "a")
		put(s, "b")
		put(s, "c")
		if got := keys(s); !equal(got, []string{"a", "b", "c"}) {
			t.Fatalf("unexpected order: %v", got)
		}
	})

	t.Run("overwrite keeps position", func(t *testing.T) {
		s := NewOrderedStore()
		put(s, "a")
		put(s, "b")
		s.Put("a", &types.Entry{Key: "a", Value: 2})
		if got := keys(s); !equal(got, []string{"a", "b"}) {
			t.Fatalf("unexpected order: %v", got)
		}
		e, _ := s.Get("a")
		if e.Value != 2 {
			t.Fatalf("expected overwritten value, got %v", e.Value)
		}
	})

	t.Run("delete then reinsert moves to back", func(t *testing.T) {
		s := NewOrderedStore()
		put(s, "a")
		put(s, "b")
		if !s.Delete("a") {
			t.Fatal("expected delete to report presence")
		}
		put(s, "a")
		if got := keys(s); !equal(got, []string{"b", "a"}) {
			t.Fatalf("unexpected order: %v", got)
		}
	})

	t.Run("delete during range", func(t *testing.T) {
		s := NewOrderedStore()
		put(s, "a")
		put(s, "b")
		put(s, "c")
		s.Range(func(e *types.Entry) bool {
			s.Delete(e.Key)
			return true
		})
		if s.Size() != 0 {
			t.Fatalf("expected empty store, got %d", s.Size())
		}
	})

	t.Run("clear", func(t *testing.T) {
		s := NewOrderedStore()
		put(s, "a")
		s.Clear()
		if _, ok := s.Get("a"); ok || s.Size() != 0 {
			t.Fatal("expected store to be empty after clear")
		}
		if s.Delete("missing") {
			t.Fatal("delete of missing key should report false")
		}
	})
}
