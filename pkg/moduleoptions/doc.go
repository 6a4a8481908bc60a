// SPDX-License-Identifier: MPL-2.0

// Package moduleoptions defines ModuleOptionsContext, the immutable set of
// feature toggles and transform lists handed to module compilation.
//
// A configuration is assembled once, interned into a Store and then shared
// through Vc handles by every consumer that was configured the same way.
// Handles expose read accessors only; changing a configuration means
// building a new value (Vc.With, New) and interning that.
//
//	store := moduleoptions.NewStore()
//	base := store.Default()
//	ts := store.Cell(base.With(moduleoptions.WithTypeScriptTransform(true)))
//	again := store.Cell(moduleoptions.New(moduleoptions.WithTypeScriptTransform(true)))
//	// ts == again, base is unchanged
package moduleoptions
