// SPDX-License-Identifier: MPL-2.0

package moduleoptions

import (
	"slices"

	"github.com/bundlecell/bundlecell/pkg/environment"
	"github.com/bundlecell/bundlecell/pkg/transform"

	"github.com/cespare/xxhash/v2"
)

// ModuleOptionsContext holds the build-time feature flags and transform
// lists that influence how source modules are compiled. It is assembled by
// field assignment (or New with overrides), then interned into a Store and
// treated as immutable through its Vc handle.
type ModuleOptionsContext struct {
	EnableEmotion             bool
	EnableReactRefresh        bool
	EnableStyledComponents    bool
	EnableStyledJSX           bool
	EnableTypeScriptTransform bool
	// PresetEnvVersions references an environment owned elsewhere.
	// Nil means the ambient default target.
	PresetEnvVersions *environment.Environment
	// CustomEcmascriptAppTransforms apply to application code, in order.
	CustomEcmascriptAppTransforms []transform.Transform
	// CustomEcmascriptTransforms apply to all code, in order.
	CustomEcmascriptTransforms []transform.Transform
	// PlaceholderForFutureExtensions carries no data. It keeps positional
	// struct literals and exhaustive field walks honest when fields are added.
	PlaceholderForFutureExtensions struct{}
}

// Default returns the canonical empty configuration: every toggle off, no
// preset environment and no custom transforms.
func Default() ModuleOptionsContext {
	return ModuleOptionsContext{
		CustomEcmascriptAppTransforms: []transform.Transform{},
		CustomEcmascriptTransforms:    []transform.Transform{},
	}
}

// New returns Default with the overrides applied in order.
func New(overrides ...Override) ModuleOptionsContext {
	ctx := Default()
	for _, o := range overrides {
		o(&ctx)
	}
	return ctx
}

// Equal reports field-by-field equality. The preset environment is compared
// by reference; transform sequences element-wise and in order. A nil and an
// empty sequence are equal.
func (c ModuleOptionsContext) Equal(o ModuleOptionsContext) bool {
	return c.EnableEmotion == o.EnableEmotion &&
		c.EnableReactRefresh == o.EnableReactRefresh &&
		c.EnableStyledComponents == o.EnableStyledComponents &&
		c.EnableStyledJSX == o.EnableStyledJSX &&
		c.EnableTypeScriptTransform == o.EnableTypeScriptTransform &&
		c.PresetEnvVersions == o.PresetEnvVersions &&
		slices.Equal(c.CustomEcmascriptAppTransforms, o.CustomEcmascriptAppTransforms) &&
		slices.Equal(c.CustomEcmascriptTransforms, o.CustomEcmascriptTransforms)
}

// Hash returns the structural hash used to key the value in a Store.
// Values that are Equal hash identically.
func (c ModuleOptionsContext) Hash() uint64 {
	d := xxhash.New()
	flags := []byte{
		boolByte(c.EnableEmotion),
		boolByte(c.EnableReactRefresh),
		boolByte(c.EnableStyledComponents),
		boolByte(c.EnableStyledJSX),
		boolByte(c.EnableTypeScriptTransform),
	}
	_, _ = d.Write(flags)
	c.PresetEnvVersions.WriteHash(d)
	writeSequence(d, c.CustomEcmascriptAppTransforms)
	writeSequence(d, c.CustomEcmascriptTransforms)
	return d.Sum64()
}

// Clone returns a deep copy. Transform slices are copied so the clone never
// shares backing arrays with c; the environment reference is shared.
func (c ModuleOptionsContext) Clone() ModuleOptionsContext {
	c.CustomEcmascriptAppTransforms = cloneSequence(c.CustomEcmascriptAppTransforms)
	c.CustomEcmascriptTransforms = cloneSequence(c.CustomEcmascriptTransforms)
	return c
}

// IsValid returns whether every transform in both sequences is valid.
// Toggles are never invalid on their own.
func (c ModuleOptionsContext) IsValid() (bool, []error) {
	var errs []error
	for _, t := range c.CustomEcmascriptAppTransforms {
		if valid, fieldErrs := t.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	for _, t := range c.CustomEcmascriptTransforms {
		if valid, fieldErrs := t.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// writeSequence writes a length prefix and every element so the two
// sequences cannot trade elements without changing the hash.
func writeSequence(d *xxhash.Digest, ts []transform.Transform) {
	_, _ = d.Write([]byte{byte(len(ts) >> 24), byte(len(ts) >> 16), byte(len(ts) >> 8), byte(len(ts))})
	for _, t := range ts {
		t.WriteHash(d)
	}
}

func cloneSequence(ts []transform.Transform) []transform.Transform {
	if ts == nil {
		return []transform.Transform{}
	}
	return slices.Clone(ts)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
