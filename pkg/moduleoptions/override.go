// SPDX-License-Identifier: MPL-2.0

package moduleoptions

import (
	"github.com/bundlecell/bundlecell/pkg/environment"
	"github.com/bundlecell/bundlecell/pkg/transform"
)

// Override changes one aspect of a ModuleOptionsContext under construction.
// Overrides only ever touch a fresh copy; see New and Vc.With.
type Override func(*ModuleOptionsContext)

// WithEmotion sets EnableEmotion.
func WithEmotion(enabled bool) Override {
	return func(c *ModuleOptionsContext) { c.EnableEmotion = enabled }
}

// WithReactRefresh sets EnableReactRefresh.
func WithReactRefresh(enabled bool) Override {
	return func(c *ModuleOptionsContext) { c.EnableReactRefresh = enabled }
}

// WithStyledComponents sets EnableStyledComponents.
func WithStyledComponents(enabled bool) Override {
	return func(c *ModuleOptionsContext) { c.EnableStyledComponents = enabled }
}

// WithStyledJSX sets EnableStyledJSX.
func WithStyledJSX(enabled bool) Override {
	return func(c *ModuleOptionsContext) { c.EnableStyledJSX = enabled }
}

// WithTypeScriptTransform sets EnableTypeScriptTransform.
func WithTypeScriptTransform(enabled bool) Override {
	return func(c *ModuleOptionsContext) { c.EnableTypeScriptTransform = enabled }
}

// WithPresetEnv points PresetEnvVersions at env. Pass nil to fall back to
// the ambient default target.
func WithPresetEnv(env *environment.Environment) Override {
	return func(c *ModuleOptionsContext) { c.PresetEnvVersions = env }
}

// AppendAppTransforms appends to CustomEcmascriptAppTransforms.
func AppendAppTransforms(ts ...transform.Transform) Override {
	return func(c *ModuleOptionsContext) {
		c.CustomEcmascriptAppTransforms = append(c.CustomEcmascriptAppTransforms, ts...)
	}
}

// AppendTransforms appends to CustomEcmascriptTransforms.
func AppendTransforms(ts ...transform.Transform) Override {
	return func(c *ModuleOptionsContext) {
		c.CustomEcmascriptTransforms = append(c.CustomEcmascriptTransforms, ts...)
	}
}

// WithAppTransforms replaces CustomEcmascriptAppTransforms.
func WithAppTransforms(ts ...transform.Transform) Override {
	return func(c *ModuleOptionsContext) {
		c.CustomEcmascriptAppTransforms = append([]transform.Transform{}, ts...)
	}
}

// WithTransforms replaces CustomEcmascriptTransforms.
func WithTransforms(ts ...transform.Transform) Override {
	return func(c *ModuleOptionsContext) {
		c.CustomEcmascriptTransforms = append([]transform.Transform{}, ts...)
	}
}
