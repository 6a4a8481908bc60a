// SPDX-License-Identifier: MPL-2.0

package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bundlecell/bundlecell/pkg/environment"

	"github.com/cespare/xxhash/v2"
)

const (
	// KindCommonJS rewrites ES module syntax to CommonJS.
	KindCommonJS Kind = "commonjs"
	// KindCustom is a user-supplied transform identified by Name.
	KindCustom Kind = "custom"
	// KindEmotion applies the Emotion CSS-in-JS transform.
	KindEmotion Kind = "emotion"
	// KindPresetEnv lowers syntax for the referenced Environment.
	KindPresetEnv Kind = "preset_env"
	// KindReact compiles JSX, optionally injecting React Refresh hooks.
	KindReact Kind = "react"
	// KindStyledComponents applies the styled-components transform.
	KindStyledComponents Kind = "styled_components"
	// KindStyledJSX applies the styled-jsx transform.
	KindStyledJSX Kind = "styled_jsx"
	// KindTypeScript strips TypeScript type syntax.
	KindTypeScript Kind = "typescript"
)

var (
	// ErrInvalidKind is returned when a Kind value is not recognized.
	ErrInvalidKind = errors.New("invalid transform kind")
	// ErrInvalidTransform is the sentinel error wrapped by InvalidTransformError.
	ErrInvalidTransform = errors.New("invalid transform")
)

type (
	// Kind identifies which rewrite a Transform performs.
	Kind string

	// InvalidKindError is returned when a Kind value is not recognized.
	// It wraps ErrInvalidKind for errors.Is() compatibility.
	InvalidKindError struct {
		Value Kind
	}

	// InvalidTransformError is returned when a Transform has fields that
	// do not fit its Kind.
	InvalidTransformError struct {
		Transform   Transform
		FieldErrors []error
	}

	// Transform is one source rewriting step. It is a comparable value:
	// two transforms are the same step iff all fields are equal, with
	// Environment compared by identity.
	Transform struct {
		Kind Kind
		// Name identifies a custom transform. Only set for KindCustom.
		Name string
		// Refresh enables React Refresh instrumentation. Only set for KindReact.
		Refresh bool
		// Environment is the lowering target. Only set for KindPresetEnv.
		Environment *environment.Environment
	}
)

// CommonJS returns the ESM-to-CommonJS transform.
func CommonJS() Transform { return Transform{Kind: KindCommonJS} }

// Custom returns a user-supplied transform identified by name.
func Custom(name string) Transform { return Transform{Kind: KindCustom, Name: name} }

// Emotion returns the Emotion transform.
func Emotion() Transform { return Transform{Kind: KindEmotion} }

// PresetEnv returns a syntax lowering transform for env.
func PresetEnv(env *environment.Environment) Transform {
	return Transform{Kind: KindPresetEnv, Environment: env}
}

// React returns the JSX transform.
func React(refresh bool) Transform { return Transform{Kind: KindReact, Refresh: refresh} }

// StyledComponents returns the styled-components transform.
func StyledComponents() Transform { return Transform{Kind: KindStyledComponents} }

// StyledJSX returns the styled-jsx transform.
func StyledJSX() Transform { return Transform{Kind: KindStyledJSX} }

// TypeScript returns the type-stripping transform.
func TypeScript() Transform { return Transform{Kind: KindTypeScript} }

// String renders the transform for display, e.g. "custom(relay)" or "react(refresh)".
func (t Transform) String() string {
	switch t.Kind {
	case KindCustom:
		return fmt.Sprintf("custom(%s)", t.Name)
	case KindReact:
		if t.Refresh {
			return "react(refresh)"
		}
		return "react"
	case KindPresetEnv:
		return fmt.Sprintf("preset_env(%s)", t.Environment.String())
	default:
		return string(t.Kind)
	}
}

// WriteHash feeds every field of t into d. Fields are length-delimited so
// adjacent transforms in a sequence cannot alias each other.
func (t Transform) WriteHash(d *xxhash.Digest) {
	_, _ = d.WriteString(string(t.Kind))
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(t.Name)
	_, _ = d.Write([]byte{0})
	if t.Refresh {
		_, _ = d.Write([]byte{1})
	} else {
		_, _ = d.Write([]byte{0})
	}
	t.Environment.WriteHash(d)
}

// IsValid returns whether the transform's fields fit its Kind:
// custom transforms need a name, preset_env needs an environment, and
// kind-specific fields must be unset for every other kind.
func (t Transform) IsValid() (bool, []error) {
	if valid, errs := t.Kind.IsValid(); !valid {
		return false, []error{&InvalidTransformError{Transform: t, FieldErrors: errs}}
	}

	var errs []error
	if t.Kind == KindCustom {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, errors.New("custom transform requires a non-empty name"))
		}
	} else if t.Name != "" {
		errs = append(errs, fmt.Errorf("name is only allowed on custom transforms, got %q", t.Name))
	}
	if t.Kind == KindPresetEnv {
		if t.Environment == nil {
			errs = append(errs, errors.New("preset_env transform requires an environment"))
		}
	} else if t.Environment != nil {
		errs = append(errs, errors.New("environment is only allowed on preset_env transforms"))
	}
	if t.Kind != KindReact && t.Refresh {
		errs = append(errs, errors.New("refresh is only allowed on react transforms"))
	}

	if len(errs) > 0 {
		return false, []error{&InvalidTransformError{Transform: t, FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidTransformError.
func (e *InvalidTransformError) Error() string {
	return fmt.Sprintf("invalid transform %s: %d field error(s)", e.Transform.String(), len(e.FieldErrors))
}

// Unwrap returns ErrInvalidTransform for errors.Is() compatibility.
func (e *InvalidTransformError) Unwrap() error { return ErrInvalidTransform }

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// IsValid returns whether the Kind is one of the defined transform kinds.
func (k Kind) IsValid() (bool, []error) {
	switch k {
	case KindCommonJS, KindCustom, KindEmotion, KindPresetEnv,
		KindReact, KindStyledComponents, KindStyledJSX, KindTypeScript:
		return true, nil
	default:
		return false, []error{&InvalidKindError{Value: k}}
	}
}

// Error implements the error interface for InvalidKindError.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid transform kind %q (valid: commonjs, custom, emotion, preset_env, react, styled_components, styled_jsx, typescript)", e.Value)
}

// Unwrap returns ErrInvalidKind for errors.Is() compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }
