// SPDX-License-Identifier: MPL-2.0

package cell

type (
	// Value is the capability a type needs to live in a cell: a structural
	// hash, field-by-field equality consistent with that hash, and a deep
	// copy so the store can detach the retained instance from the caller.
	Value[T any] interface {
		Hash() uint64
		Equal(other T) bool
		Clone() T
	}

	// Vc is a handle to an immutable value held in a cell. It is pointer
	// sized, cheap to copy and comparable with ==. Handles produced by the
	// same Store for structurally-equal values are identical.
	Vc[T Value[T]] struct {
		s *slot[T]
	}

	slot[T any] struct {
		value T
		hash  uint64
	}
)

// Detached returns a handle to a private copy of v that belongs to no store.
// Detached handles still compare structurally through Equal.
func Detached[T Value[T]](v T) Vc[T] {
	c := v.Clone()
	return Vc[T]{s: &slot[T]{value: c, hash: c.Hash()}}
}

// IsZero reports whether the handle points at nothing.
func (v Vc[T]) IsZero() bool { return v.s == nil }

// Ref returns the shared instance behind the handle, or nil for the zero
// handle. The instance is shared by every holder and must not be modified.
func (v Vc[T]) Ref() *T {
	if v.s == nil {
		return nil
	}
	return &v.s.value
}

// Hash returns the structural hash computed when the cell was created.
func (v Vc[T]) Hash() uint64 {
	if v.s == nil {
		return 0
	}
	return v.s.hash
}

// Equal reports whether both handles hold structurally-equal values.
// Identical handles short-circuit without comparing fields.
func (v Vc[T]) Equal(other Vc[T]) bool {
	if v.s == other.s {
		return true
	}
	if v.s == nil || other.s == nil {
		return false
	}
	if v.s.hash != other.s.hash {
		return false
	}
	return v.s.value.Equal(other.s.value)
}

// Same reports whether both handles point at the identical retained instance.
func (v Vc[T]) Same(other Vc[T]) bool { return v.s == other.s }
