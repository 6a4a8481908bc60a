// SPDX-License-Identifier: MPL-2.0

package moduleoptions

import (
	"fmt"
	"slices"

	"github.com/bundlecell/bundlecell/pkg/cell"
	"github.com/bundlecell/bundlecell/pkg/environment"
	"github.com/bundlecell/bundlecell/pkg/transform"
)

type (
	// Vc is a read-only handle to a ModuleOptionsContext cell. Handles are
	// cheap to copy and comparable with ==. Two handles from the same Store
	// are identical exactly when their values are Equal, while both cells are
	// retained; eviction or Forget lets a later Intern mint a fresh cell.
	Vc struct {
		cell cell.Vc[ModuleOptionsContext]
	}

	// Store interns ModuleOptionsContext values so that logically identical
	// configurations resolve to one shared instance.
	Store struct {
		cells *cell.Store[ModuleOptionsContext]
	}
)

// DefaultVc returns a detached handle to Default(). Every call observes an
// Equal value; use Store.Default for an identical handle across calls.
func DefaultVc() Vc {
	return Vc{cell: cell.Detached(Default())}
}

// NewStore creates a Store. Options are passed to the underlying cell store.
func NewStore(opts ...cell.Option) *Store {
	return &Store{cells: cell.NewStore[ModuleOptionsContext](opts...)}
}

// Default returns the store's handle for Default().
func (s *Store) Default() Vc {
	return s.Cell(Default())
}

// Cell interns ctx and returns its handle.
func (s *Store) Cell(ctx ModuleOptionsContext) Vc {
	return Vc{cell: s.cells.Cell(ctx)}
}

// Intern returns the store's handle for the value behind vc.
func (s *Store) Intern(vc Vc) Vc {
	return Vc{cell: s.cells.Intern(vc.cell)}
}

// Len returns the number of retained configurations.
func (s *Store) Len() int { return s.cells.Len() }

// Stats returns the interning counters.
func (s *Store) Stats() cell.Stats { return s.cells.Stats() }

// IsZero reports whether the handle points at nothing.
func (v Vc) IsZero() bool { return v.cell.IsZero() }

// EnableEmotion reports whether the Emotion transform is enabled.
func (v Vc) EnableEmotion() bool { return v.ref().EnableEmotion }

// EnableReactRefresh reports whether React Refresh is enabled.
func (v Vc) EnableReactRefresh() bool { return v.ref().EnableReactRefresh }

// EnableStyledComponents reports whether styled-components is enabled.
func (v Vc) EnableStyledComponents() bool { return v.ref().EnableStyledComponents }

// EnableStyledJSX reports whether styled-jsx is enabled.
func (v Vc) EnableStyledJSX() bool { return v.ref().EnableStyledJSX }

// EnableTypeScriptTransform reports whether TypeScript stripping is enabled.
func (v Vc) EnableTypeScriptTransform() bool { return v.ref().EnableTypeScriptTransform }

// PresetEnvVersions returns the referenced environment, or nil for the
// ambient default.
func (v Vc) PresetEnvVersions() *environment.Environment { return v.ref().PresetEnvVersions }

// CustomEcmascriptAppTransforms returns a copy of the app transform sequence.
func (v Vc) CustomEcmascriptAppTransforms() []transform.Transform {
	return slices.Clone(v.ref().CustomEcmascriptAppTransforms)
}

// CustomEcmascriptTransforms returns a copy of the general transform sequence.
func (v Vc) CustomEcmascriptTransforms() []transform.Transform {
	return slices.Clone(v.ref().CustomEcmascriptTransforms)
}

// PlaceholderForFutureExtensions returns the reserved unit value.
func (v Vc) PlaceholderForFutureExtensions() struct{} {
	return v.ref().PlaceholderForFutureExtensions
}

// Value returns a deep copy of the configuration, safe to modify.
func (v Vc) Value() ModuleOptionsContext { return v.ref().Clone() }

// With returns a new configuration: a copy of v's value with the overrides
// applied. The cell behind v is unchanged.
func (v Vc) With(overrides ...Override) ModuleOptionsContext {
	ctx := v.Value()
	for _, o := range overrides {
		o(&ctx)
	}
	return ctx
}

// Equal reports whether both handles hold Equal configurations.
// The zero handle equals only another zero handle.
func (v Vc) Equal(o Vc) bool { return v.cell.Equal(o.cell) }

// Hash returns the structural hash of the configuration.
func (v Vc) Hash() uint64 { return v.cell.Hash() }

// String renders a short identifier for logs, e.g. "ModuleOptionsContext#3f2a...".
func (v Vc) String() string {
	if v.IsZero() {
		return "ModuleOptionsContext#<nil>"
	}
	return fmt.Sprintf("ModuleOptionsContext#%016x", v.Hash())
}

// ref returns the shared instance; the zero handle reads as Default().
func (v Vc) ref() *ModuleOptionsContext {
	if r := v.cell.Ref(); r != nil {
		return r
	}
	return &zeroValue
}

// zeroValue backs reads through the zero handle. It is never modified.
var zeroValue = Default()
