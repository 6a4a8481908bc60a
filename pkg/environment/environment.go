// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const (
	// KindBrowser targets browser engines.
	KindBrowser Kind = "browser"
	// KindNode targets the Node.js runtime.
	KindNode Kind = "node"
	// KindEdge targets edge runtimes (worker-style isolates).
	KindEdge Kind = "edge"

	// EngineChrome is Google Chrome and Chromium derivatives.
	EngineChrome Engine = "chrome"
	// EngineEdge is Microsoft Edge.
	EngineEdge Engine = "edge"
	// EngineFirefox is Mozilla Firefox.
	EngineFirefox Engine = "firefox"
	// EngineSafari is desktop Safari.
	EngineSafari Engine = "safari"
	// EngineIOS is Safari on iOS.
	EngineIOS Engine = "ios"
	// EngineOpera is Opera.
	EngineOpera Engine = "opera"
	// EngineNode is Node.js.
	EngineNode Engine = "node"
	// EngineDeno is Deno.
	EngineDeno Engine = "deno"
)

var (
	// ErrInvalidKind is returned when a Kind value is not recognized.
	ErrInvalidKind = errors.New("invalid environment kind")
	// ErrInvalidEngine is returned when an Engine value is not recognized.
	ErrInvalidEngine = errors.New("invalid engine")
	// ErrInvalidTarget is the sentinel error wrapped by InvalidTargetError.
	ErrInvalidTarget = errors.New("invalid target")

	versionPattern = regexp.MustCompile(`^\d+(\.\d+){0,2}$`)

	// lastID hands out process-unique descriptor identities.
	lastID atomic.Uint64
)

type (
	// Kind classifies the runtime family an Environment targets.
	Kind string

	// InvalidKindError is returned when a Kind value is not recognized.
	// It wraps ErrInvalidKind for errors.Is() compatibility.
	InvalidKindError struct {
		Value Kind
	}

	// Engine names a JavaScript engine a Target pins a version for.
	Engine string

	// InvalidEngineError is returned when an Engine value is not recognized.
	// It wraps ErrInvalidEngine for errors.Is() compatibility.
	InvalidEngineError struct {
		Value Engine
	}

	// Target pins the minimum supported version of one engine.
	Target struct {
		Engine  Engine `json:"engine" mapstructure:"engine" toml:"engine"`
		Version string `json:"version" mapstructure:"version" toml:"version"`
	}

	// InvalidTargetError is returned when a Target has invalid fields.
	InvalidTargetError struct {
		Target      Target
		FieldErrors []error
	}

	// Environment describes the compilation/runtime targets a build emits
	// code for. Descriptors are immutable and compared by identity: two
	// descriptors with the same targets are still different environments.
	Environment struct {
		id      uint64
		name    string
		kind    Kind
		targets []Target
	}
)

// New creates a descriptor with a fresh identity. The targets slice is copied.
func New(name string, kind Kind, targets ...Target) *Environment {
	return &Environment{
		id:      lastID.Add(1),
		name:    name,
		kind:    kind,
		targets: slices.Clone(targets),
	}
}

// ID returns the process-unique identity of the descriptor.
// A nil descriptor has ID 0.
func (e *Environment) ID() uint64 {
	if e == nil {
		return 0
	}
	return e.id
}

// Name returns the name the descriptor was defined under, or "" for nil.
func (e *Environment) Name() string {
	if e == nil {
		return ""
	}
	return e.name
}

// Kind returns the runtime family, or "" for nil.
func (e *Environment) Kind() Kind {
	if e == nil {
		return ""
	}
	return e.kind
}

// Targets returns a copy of the engine version pins, or nil for nil.
func (e *Environment) Targets() []Target {
	if e == nil {
		return nil
	}
	return slices.Clone(e.targets)
}

// String renders the descriptor as "name (kind: engine version, ...)".
func (e *Environment) String() string {
	if e == nil {
		return "<ambient>"
	}
	parts := make([]string, 0, len(e.targets))
	for _, t := range e.targets {
		parts = append(parts, t.String())
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s (%s)", e.name, e.kind)
	}
	return fmt.Sprintf("%s (%s: %s)", e.name, e.kind, strings.Join(parts, ", "))
}

// WriteHash feeds the descriptor identity into d. Contents are not hashed;
// the descriptor is a reference and two references are equal only if they
// point at the same descriptor.
func (e *Environment) WriteHash(d *xxhash.Digest) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], e.ID())
	_, _ = d.Write(buf[:])
}

// IsValid returns whether every target of the descriptor is valid.
func (e *Environment) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := e.kind.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, t := range e.targets {
		if valid, fieldErrs := t.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// IsValid returns whether the Kind is one of the defined kinds.
func (k Kind) IsValid() (bool, []error) {
	switch k {
	case KindBrowser, KindNode, KindEdge:
		return true, nil
	default:
		return false, []error{&InvalidKindError{Value: k}}
	}
}

// Error implements the error interface for InvalidKindError.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid environment kind %q (valid: browser, node, edge)", e.Value)
}

// Unwrap returns ErrInvalidKind for errors.Is() compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }

// String returns the string representation of the Engine.
func (en Engine) String() string { return string(en) }

// IsValid returns whether the Engine is one of the defined engines.
func (en Engine) IsValid() (bool, []error) {
	switch en {
	case EngineChrome, EngineEdge, EngineFirefox, EngineSafari,
		EngineIOS, EngineOpera, EngineNode, EngineDeno:
		return true, nil
	default:
		return false, []error{&InvalidEngineError{Value: en}}
	}
}

// Error implements the error interface for InvalidEngineError.
func (e *InvalidEngineError) Error() string {
	return fmt.Sprintf("invalid engine %q (valid: chrome, edge, firefox, safari, ios, opera, node, deno)", e.Value)
}

// Unwrap returns ErrInvalidEngine for errors.Is() compatibility.
func (e *InvalidEngineError) Unwrap() error { return ErrInvalidEngine }

// String renders the target as "engine version".
func (t Target) String() string { return string(t.Engine) + " " + t.Version }

// IsValid returns whether the Target names a known engine and a dotted
// numeric version such as "18", "15.4" or "120.0.1".
func (t Target) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := t.Engine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if !versionPattern.MatchString(t.Version) {
		errs = append(errs, fmt.Errorf("version %q must be dotted numeric", t.Version))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidTargetError{Target: t, FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidTargetError.
func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %q: %d field error(s)", e.Target.String(), len(e.FieldErrors))
}

// Unwrap returns ErrInvalidTarget for errors.Is() compatibility.
func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }
