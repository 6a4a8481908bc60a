// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/bundlecell/bundlecell/internal/issue"
	"github.com/bundlecell/bundlecell/pkg/environment"
	"github.com/bundlecell/bundlecell/pkg/moduleoptions"
	"github.com/bundlecell/bundlecell/pkg/transform"
)

// ErrEnvironmentNotFound is returned when a configuration references an
// environment name that is not defined.
var ErrEnvironmentNotFound = errors.New("environment not found")

// EnvironmentNotFoundError names the missing environment and where it was
// referenced from.
type EnvironmentNotFoundError struct {
	Name  EnvironmentName
	Field string
}

// Error implements the error interface for EnvironmentNotFoundError.
func (e *EnvironmentNotFoundError) Error() string {
	return fmt.Sprintf("%s: environment %q is not defined", e.Field, e.Name)
}

// Unwrap returns ErrEnvironmentNotFound for errors.Is() compatibility.
func (e *EnvironmentNotFoundError) Unwrap() error { return ErrEnvironmentNotFound }

// Resolve defines the configured environments in reg and converts
// cfg.ModuleOptions into a ModuleOptionsContext whose environment references
// point at reg's descriptors. Unchanged environment definitions keep their
// identity across calls, so resolving the same configuration twice yields
// Equal values. References must name an environment defined by cfg itself.
func Resolve(cfg *Config, reg *environment.Registry) (moduleoptions.ModuleOptionsContext, error) {
	for _, name := range sortedNames(cfg.Environments) {
		env := cfg.Environments[name]
		reg.Ensure(name.String(), env.Kind, env.Targets...)
	}

	// Only names defined by cfg resolve. reg may still hold descriptors from
	// earlier configurations.
	lookup := func(name EnvironmentName, field string) (*environment.Environment, error) {
		if _, defined := cfg.Environments[name]; defined {
			if env, ok := reg.Lookup(name.String()); ok {
				return env, nil
			}
		}
		return nil, issue.NewErrorContext().
			WithOperation("resolve module options").
			WithResource(field).
			WithIssue(issue.EnvironmentNotFoundId).
			WithSuggestion(fmt.Sprintf("Define environments.%s or remove the reference", name)).
			Wrap(&EnvironmentNotFoundError{Name: name, Field: field}).
			BuildError()
	}

	mo := cfg.ModuleOptions
	ctx := moduleoptions.New(
		moduleoptions.WithEmotion(mo.EnableEmotion),
		moduleoptions.WithReactRefresh(mo.EnableReactRefresh),
		moduleoptions.WithStyledComponents(mo.EnableStyledComponents),
		moduleoptions.WithStyledJSX(mo.EnableStyledJSX),
		moduleoptions.WithTypeScriptTransform(mo.EnableTypeScriptTransform),
	)

	if mo.PresetEnv != "" {
		env, err := lookup(mo.PresetEnv, "module_options.preset_env")
		if err != nil {
			return moduleoptions.ModuleOptionsContext{}, err
		}
		ctx.PresetEnvVersions = env
	}

	var err error
	ctx.CustomEcmascriptAppTransforms, err = resolveTransforms(mo.CustomEcmascriptAppTransforms,
		"module_options.custom_ecmascript_app_transforms", lookup)
	if err != nil {
		return moduleoptions.ModuleOptionsContext{}, err
	}
	ctx.CustomEcmascriptTransforms, err = resolveTransforms(mo.CustomEcmascriptTransforms,
		"module_options.custom_ecmascript_transforms", lookup)
	if err != nil {
		return moduleoptions.ModuleOptionsContext{}, err
	}

	if valid, errs := ctx.IsValid(); !valid {
		return moduleoptions.ModuleOptionsContext{}, issue.NewErrorContext().
			WithOperation("resolve module options").
			WithIssue(issue.InvalidTransformId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}
	return ctx, nil
}

func resolveTransforms(
	cfgs []TransformConfig,
	field string,
	lookup func(EnvironmentName, string) (*environment.Environment, error),
) ([]transform.Transform, error) {
	out := make([]transform.Transform, 0, len(cfgs))
	for i, c := range cfgs {
		t := transform.Transform{Kind: c.Kind, Name: c.Name, Refresh: c.Refresh}
		if c.Environment != "" {
			env, err := lookup(c.Environment, fmt.Sprintf("%s[%d].environment", field, i))
			if err != nil {
				return nil, err
			}
			t.Environment = env
		}
		out = append(out, t)
	}
	return out, nil
}
