// SPDX-License-Identifier: MPL-2.0

package cell

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

type (
	// Store is a content-addressed cache of cells. Interning a value that is
	// structurally equal to one already held returns the existing handle, so
	// equal configurations collapse to one retained instance.
	//
	// A Store is safe for concurrent use.
	Store[T Value[T]] struct {
		mu         sync.Mutex
		buckets    map[uint64][]*entry[T]
		size       int
		tick       uint64
		maxEntries int
		logger     *log.Logger
		stats      Stats
	}

	// Stats reports interning counters.
	Stats struct {
		Entries   int
		Hits      uint64
		Misses    uint64
		Evictions uint64
	}

	// Option configures a Store.
	Option func(*storeOptions)

	storeOptions struct {
		maxEntries int
		logger     *log.Logger
	}

	entry[T any] struct {
		slot *slot[T]
		// tick is the store clock value of the last intern that hit this entry.
		tick uint64
	}
)

// WithMaxEntries bounds the number of retained cells. When the bound is
// exceeded the least recently interned cells are dropped from the store;
// handles already given out stay valid for their holders.
// Zero (the default) means unbounded.
func WithMaxEntries(n int) Option {
	return func(o *storeOptions) {
		o.maxEntries = n
	}
}

// WithLogger sets the logger used for debug output about hits, misses and
// evictions.
func WithLogger(logger *log.Logger) Option {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// NewStore creates an empty Store.
func NewStore[T Value[T]](opts ...Option) *Store[T] {
	options := storeOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "cell",
			Level:  log.InfoLevel,
		})
	}

	return &Store[T]{
		buckets:    make(map[uint64][]*entry[T]),
		maxEntries: options.maxEntries,
		logger:     options.logger,
	}
}

// Cell interns v and returns its handle. The store keeps a deep copy, so
// later changes to v (for example appending to one of its slices) do not
// reach the retained instance.
func (s *Store[T]) Cell(v T) Vc[T] {
	h := v.Hash()

	s.mu.Lock()
	defer s.mu.Unlock()

	if vc, ok := s.lookupLocked(h, v); ok {
		return vc
	}

	c := v.Clone()
	return s.insertLocked(&slot[T]{value: c, hash: h})
}

// Intern returns the store's handle for the value behind vc. When no equal
// cell exists yet, vc's own instance is adopted without copying.
func (s *Store[T]) Intern(vc Vc[T]) Vc[T] {
	if vc.IsZero() {
		return vc
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.lookupLocked(vc.s.hash, vc.s.value); ok {
		return existing
	}
	return s.insertLocked(vc.s)
}

// Forget drops the cell behind vc from the store. Holders keep their handle;
// the next intern of an equal value creates a fresh cell.
func (s *Store[T]) Forget(vc Vc[T]) bool {
	if vc.IsZero() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.buckets[vc.s.hash]
	for i, e := range bucket {
		if e.slot == vc.s {
			s.removeLocked(vc.s.hash, i)
			return true
		}
	}
	return false
}

// Reset drops every cell and zeroes the counters.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buckets = make(map[uint64][]*entry[T])
	s.size = 0
	s.tick = 0
	s.stats = Stats{}
}

// Len returns the number of retained cells.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Stats returns a snapshot of the interning counters.
func (s *Store[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Entries = s.size
	return st
}

// lookupLocked finds a retained cell equal to v. Must be called with s.mu held.
func (s *Store[T]) lookupLocked(h uint64, v T) (Vc[T], bool) {
	s.tick++
	for _, e := range s.buckets[h] {
		if e.slot.value.Equal(v) {
			e.tick = s.tick
			s.stats.Hits++
			s.logger.Debug("cell hit", "hash", hashString(h))
			return Vc[T]{s: e.slot}, true
		}
	}
	return Vc[T]{}, false
}

// insertLocked retains sl and evicts if over capacity. Must be called with s.mu held.
func (s *Store[T]) insertLocked(sl *slot[T]) Vc[T] {
	s.buckets[sl.hash] = append(s.buckets[sl.hash], &entry[T]{slot: sl, tick: s.tick})
	s.size++
	s.stats.Misses++
	s.logger.Debug("cell created", "hash", hashString(sl.hash), "entries", s.size)

	s.evictOldestLocked()
	return Vc[T]{s: sl}
}

// removeLocked deletes bucket[i] for hash h. Must be called with s.mu held.
func (s *Store[T]) removeLocked(h uint64, i int) {
	bucket := slices.Delete(s.buckets[h], i, i+1)
	if len(bucket) == 0 {
		delete(s.buckets, h)
	} else {
		s.buckets[h] = bucket
	}
	s.size--
}

// evictOldestLocked removes the least recently interned cells when over
// capacity. Must be called with s.mu held.
func (s *Store[T]) evictOldestLocked() {
	if s.maxEntries <= 0 {
		return
	}
	excess := s.size - s.maxEntries
	if excess <= 0 {
		return
	}

	type keyAccess struct {
		hash uint64
		slot *slot[T]
		tick uint64
	}
	all := make([]keyAccess, 0, s.size)
	for h, bucket := range s.buckets {
		for _, e := range bucket {
			all = append(all, keyAccess{hash: h, slot: e.slot, tick: e.tick})
		}
	}
	slices.SortFunc(all, func(a, b keyAccess) int {
		switch {
		case a.tick < b.tick:
			return -1
		case a.tick > b.tick:
			return 1
		default:
			return 0
		}
	})

	for _, victim := range all[:excess] {
		for i, e := range s.buckets[victim.hash] {
			if e.slot == victim.slot {
				s.removeLocked(victim.hash, i)
				break
			}
		}
		s.stats.Evictions++
		s.logger.Debug("cell evicted", "hash", hashString(victim.hash), "entries", s.size)
	}
}

func hashString(h uint64) string { return fmt.Sprintf("%016x", h) }
