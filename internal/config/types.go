// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/bundlecell/bundlecell/pkg/environment"
	"github.com/bundlecell/bundlecell/pkg/transform"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultCacheMaxEntries bounds the option cell store unless configured.
	DefaultCacheMaxEntries = 1024
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidEnvironmentName is the sentinel error wrapped by InvalidEnvironmentNameError.
	ErrInvalidEnvironmentName = errors.New("invalid environment name")
	// ErrInvalidCacheConfig is the sentinel error wrapped by InvalidCacheConfigError.
	ErrInvalidCacheConfig = errors.New("invalid cache config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidEnvironmentConfig is the sentinel error wrapped by InvalidEnvironmentConfigError.
	ErrInvalidEnvironmentConfig = errors.New("invalid environment config")
	// ErrInvalidModuleOptionsConfig is the sentinel error wrapped by InvalidModuleOptionsConfigError.
	ErrInvalidModuleOptionsConfig = errors.New("invalid module options config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	// Viper lowercases keys, so names are restricted to lowercase.
	environmentNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// EnvironmentName keys an entry in Config.Environments.
	EnvironmentName string

	// InvalidEnvironmentNameError is returned when an EnvironmentName does not
	// match [a-z][a-z0-9_-]*.
	InvalidEnvironmentNameError struct {
		Value EnvironmentName
	}

	// InvalidCacheConfigError is returned when a CacheConfig has invalid fields.
	InvalidCacheConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidEnvironmentConfigError is returned when an EnvironmentConfig has
	// invalid fields.
	InvalidEnvironmentConfigError struct {
		Name        EnvironmentName
		FieldErrors []error
	}

	// InvalidModuleOptionsConfigError is returned when a ModuleOptionsConfig
	// has invalid fields.
	InvalidModuleOptionsConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
		// Cache bounds the interned module option cells
		Cache CacheConfig `json:"cache" mapstructure:"cache" toml:"cache"`
		// Environments defines the named compilation targets
		Environments map[EnvironmentName]EnvironmentConfig `json:"environments" mapstructure:"environments" toml:"environments"`
		// ModuleOptions is the configuration resolved into a ModuleOptionsContext
		ModuleOptions ModuleOptionsConfig `json:"module_options" mapstructure:"module_options" toml:"module_options"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
	}

	// CacheConfig configures the module option cell store.
	CacheConfig struct {
		// MaxEntries caps retained cells; zero means unbounded
		MaxEntries int `json:"max_entries" mapstructure:"max_entries" toml:"max_entries"`
	}

	// EnvironmentConfig describes one named environment.
	EnvironmentConfig struct {
		Kind    environment.Kind     `json:"kind" mapstructure:"kind" toml:"kind"`
		Targets []environment.Target `json:"targets" mapstructure:"targets" toml:"targets"`
	}

	// TransformConfig is the configuration form of a transform.Transform.
	// Environment refers to Config.Environments by name.
	TransformConfig struct {
		Kind        transform.Kind  `json:"kind" mapstructure:"kind" toml:"kind"`
		Name        string          `json:"name,omitempty" mapstructure:"name" toml:"name,omitempty"`
		Refresh     bool            `json:"refresh,omitempty" mapstructure:"refresh" toml:"refresh,omitempty"`
		Environment EnvironmentName `json:"environment,omitempty" mapstructure:"environment" toml:"environment,omitempty"`
	}

	// ModuleOptionsConfig mirrors moduleoptions.ModuleOptionsContext with the
	// preset environment given by name.
	ModuleOptionsConfig struct {
		EnableEmotion             bool `json:"enable_emotion" mapstructure:"enable_emotion" toml:"enable_emotion"`
		EnableReactRefresh        bool `json:"enable_react_refresh" mapstructure:"enable_react_refresh" toml:"enable_react_refresh"`
		EnableStyledComponents    bool `json:"enable_styled_components" mapstructure:"enable_styled_components" toml:"enable_styled_components"`
		EnableStyledJSX           bool `json:"enable_styled_jsx" mapstructure:"enable_styled_jsx" toml:"enable_styled_jsx"`
		EnableTypeScriptTransform bool `json:"enable_typescript_transform" mapstructure:"enable_typescript_transform" toml:"enable_typescript_transform"`
		// PresetEnv names the preset environment; empty means ambient
		PresetEnv                     EnvironmentName   `json:"preset_env,omitempty" mapstructure:"preset_env" toml:"preset_env,omitempty"`
		CustomEcmascriptAppTransforms []TransformConfig `json:"custom_ecmascript_app_transforms" mapstructure:"custom_ecmascript_app_transforms" toml:"custom_ecmascript_app_transforms"`
		CustomEcmascriptTransforms    []TransformConfig `json:"custom_ecmascript_transforms" mapstructure:"custom_ecmascript_transforms" toml:"custom_ecmascript_transforms"`
	}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Cache: CacheConfig{
			MaxEntries: DefaultCacheMaxEntries,
		},
		Environments: map[EnvironmentName]EnvironmentConfig{},
		ModuleOptions: ModuleOptionsConfig{
			CustomEcmascriptAppTransforms: []TransformConfig{},
			CustomEcmascriptTransforms:    []TransformConfig{},
		},
	}
}

// IsValid returns whether the Config has valid fields.
// Cross references (preset_env, transform environments) are checked by
// Resolve, which knows the defined environments.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Cache.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, name := range sortedNames(c.Environments) {
		if valid, fieldErrs := name.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
		if valid, fieldErrs := c.Environments[name].isValid(name); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.ModuleOptions.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether MaxEntries is zero or positive.
func (c CacheConfig) IsValid() (bool, []error) {
	if c.MaxEntries < 0 {
		return false, []error{&InvalidCacheConfigError{
			FieldErrors: []error{fmt.Errorf("max_entries must be >= 0, got %d", c.MaxEntries)},
		}}
	}
	return true, nil
}

// Error implements the error interface for InvalidCacheConfigError.
func (e *InvalidCacheConfigError) Error() string {
	return fmt.Sprintf("invalid cache config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidCacheConfig for errors.Is() compatibility.
func (e *InvalidCacheConfigError) Unwrap() error { return ErrInvalidCacheConfig }

func (c EnvironmentConfig) isValid(name EnvironmentName) (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Kind.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, target := range c.Targets {
		if valid, fieldErrs := target.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidEnvironmentConfigError{Name: name, FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidEnvironmentConfigError.
func (e *InvalidEnvironmentConfigError) Error() string {
	return fmt.Sprintf("invalid environment %q: %d field error(s)", e.Name, len(e.FieldErrors))
}

// Unwrap returns ErrInvalidEnvironmentConfig for errors.Is() compatibility.
func (e *InvalidEnvironmentConfigError) Unwrap() error { return ErrInvalidEnvironmentConfig }

// IsValid checks the preset name and each transform's shape. Unlike
// transform.Transform, a preset_env entry carries an environment name here.
func (c ModuleOptionsConfig) IsValid() (bool, []error) {
	var errs []error
	if c.PresetEnv != "" {
		if valid, fieldErrs := c.PresetEnv.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	for _, seq := range [][]TransformConfig{c.CustomEcmascriptAppTransforms, c.CustomEcmascriptTransforms} {
		for _, t := range seq {
			if valid, fieldErrs := t.IsValid(); !valid {
				errs = append(errs, fieldErrs...)
			}
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidModuleOptionsConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidModuleOptionsConfigError.
func (e *InvalidModuleOptionsConfigError) Error() string {
	return fmt.Sprintf("invalid module options: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidModuleOptionsConfig for errors.Is() compatibility.
func (e *InvalidModuleOptionsConfigError) Unwrap() error { return ErrInvalidModuleOptionsConfig }

// IsValid validates the transform shape with a placeholder environment
// standing in for a named reference.
func (t TransformConfig) IsValid() (bool, []error) {
	var errs []error
	if t.Environment != "" {
		if valid, fieldErrs := t.Environment.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	var env *environment.Environment
	if t.Environment != "" {
		env = placeholderEnvironment
	}
	probe := transform.Transform{Kind: t.Kind, Name: t.Name, Refresh: t.Refresh, Environment: env}
	if valid, fieldErrs := probe.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// placeholderEnvironment only ever satisfies shape checks; it is never
// referenced by a resolved configuration.
var placeholderEnvironment = environment.New("placeholder", environment.KindBrowser)

// String returns the string representation of the EnvironmentName.
func (n EnvironmentName) String() string { return string(n) }

// IsValid returns whether the name matches [a-z][a-z0-9_-]*.
func (n EnvironmentName) IsValid() (bool, []error) {
	if !environmentNamePattern.MatchString(string(n)) {
		return false, []error{&InvalidEnvironmentNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidEnvironmentNameError.
func (e *InvalidEnvironmentNameError) Error() string {
	return fmt.Sprintf("invalid environment name %q: must match [a-z][a-z0-9_-]*", e.Value)
}

// Unwrap returns ErrInvalidEnvironmentName for errors.Is() compatibility.
func (e *InvalidEnvironmentNameError) Unwrap() error { return ErrInvalidEnvironmentName }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}
