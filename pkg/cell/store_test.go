// SPDX-License-Identifier: MPL-2.0

package cell

import (
	"encoding/binary"
	"io"
	"slices"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

type point struct {
	X, Y int
	Tags []string
}

func (p point) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(p.X))
	_, _ = d.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(p.Y))
	_, _ = d.Write(buf[:])
	for _, tag := range p.Tags {
		_, _ = d.WriteString(tag)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

func (p point) Equal(o point) bool {
	return p.X == o.X && p.Y == o.Y && slices.Equal(p.Tags, o.Tags)
}

func (p point) Clone() point {
	p.Tags = slices.Clone(p.Tags)
	return p
}

// collider hashes every value to the same bucket.
type collider struct{ N int }

func (c collider) Hash() uint64          { return 42 }
func (c collider) Equal(o collider) bool { return c == o }
func (c collider) Clone() collider       { return c }

func quietStore[T Value[T]](opts ...Option) *Store[T] {
	opts = append(opts, WithLogger(log.New(io.Discard)))
	return NewStore[T](opts...)
}

func TestStore_CellDeduplicates(t *testing.T) {
	t.Parallel()

	s := quietStore[point]()
	a := s.Cell(point{X: 1, Y: 2, Tags: []string{"a"}})
	b := s.Cell(point{X: 1, Y: 2, Tags: []string{"a"}})

	if a != b {
		t.Error("structurally equal values must intern to the identical handle")
	}
	if !a.Same(b) {
		t.Error("Same() should hold for interned equal values")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	c := s.Cell(point{X: 1, Y: 2, Tags: []string{"b"}})
	if c == a || c.Equal(a) {
		t.Error("different values must not share a handle")
	}

	st := s.Stats()
	if st.Hits != 1 || st.Misses != 2 || st.Entries != 2 {
		t.Errorf("Stats() = %+v, want 1 hit, 2 misses, 2 entries", st)
	}
}

func TestStore_CellDetachesFromCaller(t *testing.T) {
	t.Parallel()

	s := quietStore[point]()
	v := point{Tags: []string{"keep"}}
	vc := s.Cell(v)

	v.Tags[0] = "mutated"
	if got := vc.Ref().Tags[0]; got != "keep" {
		t.Errorf("retained instance aliased caller slice: got %q", got)
	}
}

func TestStore_HashCollisions(t *testing.T) {
	t.Parallel()

	s := quietStore[collider]()
	a := s.Cell(collider{N: 1})
	b := s.Cell(collider{N: 2})
	a2 := s.Cell(collider{N: 1})

	if a == b {
		t.Error("colliding but unequal values must get distinct cells")
	}
	if a != a2 {
		t.Error("equal value in a shared bucket must still be found")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	if !s.Forget(b) {
		t.Fatal("Forget(b) should report true")
	}
	if s.Cell(collider{N: 1}) != a {
		t.Error("forgetting a bucket neighbour must not drop a")
	}
}

func TestDetached(t *testing.T) {
	t.Parallel()

	s := quietStore[point]()
	stored := s.Cell(point{X: 3})
	detached := Detached(point{X: 3})

	if detached == stored {
		t.Error("a detached handle is not the store's instance")
	}
	if !detached.Equal(stored) {
		t.Error("detached and stored handles with equal values must be Equal")
	}
	if detached.Hash() != stored.Hash() {
		t.Error("equal values must share a hash")
	}
	if got := s.Intern(detached); got != stored {
		t.Error("Intern must return the existing equal cell")
	}

	fresh := Detached(point{X: 4})
	if got := s.Intern(fresh); got != fresh {
		t.Error("Intern must adopt a handle with no equal cell")
	}
	if s.Cell(point{X: 4}) != fresh {
		t.Error("adopted handle must be returned for later equal values")
	}
}

func TestVc_Zero(t *testing.T) {
	t.Parallel()

	var zero Vc[point]
	if !zero.IsZero() {
		t.Error("zero handle should report IsZero")
	}
	if zero.Ref() != nil {
		t.Error("zero handle Ref() should be nil")
	}
	if zero.Hash() != 0 {
		t.Error("zero handle Hash() should be 0")
	}
	if zero.Equal(Detached(point{})) {
		t.Error("zero handle must not equal a live handle")
	}
	if !zero.Equal(Vc[point]{}) {
		t.Error("two zero handles are equal")
	}

	s := quietStore[point]()
	if got := s.Intern(zero); !got.IsZero() {
		t.Error("interning the zero handle returns it unchanged")
	}
	if s.Forget(zero) {
		t.Error("Forget(zero) should report false")
	}
}

func TestStore_Eviction(t *testing.T) {
	t.Parallel()

	s := quietStore[point](WithMaxEntries(2))
	first := s.Cell(point{X: 1})
	s.Cell(point{X: 2})
	s.Cell(point{X: 1}) // touch first so X=2 becomes the oldest
	s.Cell(point{X: 3})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.Cell(point{X: 1}) != first {
		t.Error("recently used cell should survive eviction")
	}
	if s.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", s.Stats().Evictions)
	}

	// The evicted handle is still readable by holders.
	if first.Ref().X != 1 {
		t.Error("handle must stay valid")
	}
}

func TestStore_ForgetAndReset(t *testing.T) {
	t.Parallel()

	s := quietStore[point]()
	a := s.Cell(point{X: 1})

	if !s.Forget(a) {
		t.Fatal("Forget should report true for a retained cell")
	}
	if s.Forget(a) {
		t.Error("second Forget should report false")
	}
	b := s.Cell(point{X: 1})
	if a == b {
		t.Error("after Forget a fresh cell is created")
	}
	if !a.Equal(b) {
		t.Error("old and new cells still compare structurally equal")
	}

	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", s.Len())
	}
	if s.Stats() != (Stats{}) {
		t.Errorf("Stats() after Reset = %+v, want zero", s.Stats())
	}
}

func TestStore_ConcurrentCell(t *testing.T) {
	t.Parallel()

	s := quietStore[point]()
	const workers = 64
	handles := make([]Vc[point], workers)

	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			handles[i] = s.Cell(point{X: 7, Y: 7, Tags: []string{"shared"}})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, h := range handles {
		if h != handles[0] {
			t.Fatalf("handle %d differs from handle 0", i)
		}
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	st := s.Stats()
	if st.Misses != 1 || st.Hits != workers-1 {
		t.Errorf("Stats() = %+v, want 1 miss and %d hits", st, workers-1)
	}
}
