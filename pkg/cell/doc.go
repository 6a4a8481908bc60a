// SPDX-License-Identifier: MPL-2.0

// Package cell provides immutable value cells and a content-addressed store
// that deduplicates them.
//
// A value type opts in by implementing Value: a structural Hash, an Equal
// consistent with it, and a deep Clone. Store.Cell interns a value and
// returns a Vc handle; interning a structurally-equal value again yields the
// identical handle, so downstream memoization can key on the handle itself.
//
//	store := cell.NewStore[moduleoptions.ModuleOptionsContext]()
//	a := store.Cell(moduleoptions.Default())
//	b := store.Cell(moduleoptions.Default())
//	// a == b
//
// Values behind a handle are shared by all holders and are never modified.
// Retained cells live until evicted or forgotten; handles outlive eviction.
package cell
