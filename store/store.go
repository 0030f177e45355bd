package store

import (
	"container/list"

	"github.com/krisalay/querycache/types"
)

/*
This file defines how entries are actually held in memory.

Iteration order matters: it is the tie-break the eviction policy uses when two
entries carry the same timestamp. Keys iterate in the order they were first
inserted. Overwriting an existing key keeps its position; deleting and then
re-inserting a key moves it to the back.

A store does no locking of its own. The Manager serializes every call.
*/

// Store is the interface the Manager uses to hold entries.
type Store interface {

	// Get retrieves an entry by key.
	Get(string) (*types.Entry, bool)

	// Put inserts or replaces an entry.
	Put(string, *types.Entry)

	// Delete removes an entry and reports whether it was present.
	Delete(string) bool

	// Size returns how many entries are stored.
	Size() int

	// Range visits entries in iteration order until fn returns false.
	Range(fn func(*types.Entry) bool)

	// Clear drops every entry.
	Clear()
}

/*
orderedStore pairs a map for O(1) lookup with a linked list that remembers
insertion order.
*/
type orderedStore struct {
	items map[string]*list.Element
	order *list.List
}

// NewOrderedStore returns an empty insertion-ordered store.
func NewOrderedStore() Store {
	return &orderedStore{
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

func (s *orderedStore) Get(key string) (*types.Entry, bool) {
	el, ok := s.items[key]
	if !ok {
		return nil, false
	}
	return el.Value.(*types.Entry), true
}

// Put replaces the entry in place when the key exists, otherwise appends it.
func (s *orderedStore) Put(key string, ent *types.Entry) {
	if el, ok := s.items[key]; ok {
		el.Value = ent
		return
	}
	s.items[key] = s.order.PushBack(ent)
}

func (s *orderedStore) Delete(key string) bool {
	el, ok := s.items[key]
	if !ok {
		return false
	}
	s.order.Remove(el)
	delete(s.items, key)
	return true
}

func (s *orderedStore) Size() int {
	return len(s.items)
}

// Range tolerates fn deleting the entry it is currently visiting.
func (s *orderedStore) Range(fn func(*types.Entry) bool) {
	for el := s.order.Front(); el != nil; {
		next := el.Next()
		if !fn(el.Value.(*types.Entry)) {
			return
		}
		el = next
	}
}

func (s *orderedStore) Clear() {
	clear(s.items)
	s.order.Init()
}
