// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/bundlecell/bundlecell/internal/issue"
	"github.com/bundlecell/bundlecell/pkg/cueutil"
	"github.com/bundlecell/bundlecell/pkg/types"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "bundlecell"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema string

var schema = cueutil.NewSchema(configSchema, "#Config")

// ConfigDir returns the bundlecell configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the default config file location.
func ConfigFilePath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. The returned path is empty when only defaults apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := opts.Validate(); err != nil {
		return nil, "", err
	}

	v := viper.New()

	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("cache.max_entries", defaults.Cache.MaxEntries)
	v.SetDefault("environments", map[string]any{})
	v.SetDefault("module_options.enable_emotion", defaults.ModuleOptions.EnableEmotion)
	v.SetDefault("module_options.enable_react_refresh", defaults.ModuleOptions.EnableReactRefresh)
	v.SetDefault("module_options.enable_styled_components", defaults.ModuleOptions.EnableStyledComponents)
	v.SetDefault("module_options.enable_styled_jsx", defaults.ModuleOptions.EnableStyledJSX)
	v.SetDefault("module_options.enable_typescript_transform", defaults.ModuleOptions.EnableTypeScriptTransform)
	v.SetDefault("module_options.preset_env", defaults.ModuleOptions.PresetEnv)
	v.SetDefault("module_options.custom_ecmascript_app_transforms", defaults.ModuleOptions.CustomEcmascriptAppTransforms)
	v.SetDefault("module_options.custom_ecmascript_transforms", defaults.ModuleOptions.CustomEcmascriptTransforms)

	resolvedPath, err := locate(opts)
	if err != nil {
		return nil, "", err
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithIssue(issue.ConfigParseErrorId).
				WithSuggestions(
					"Check that the file contains valid CUE syntax",
					"Verify the configuration values match the expected schema",
					"See 'bundlecell config --help' for configuration options",
				).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Environments == nil {
		cfg.Environments = map[EnvironmentName]EnvironmentConfig{}
	}

	// The schema covers shapes; IsValid re-checks values that reached Viper
	// from defaults or Set.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithIssue(issue.ConfigInvalidId).
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// locate returns the config file to load: the explicit file, then the config
// directory, then the working directory. An empty path means defaults only.
func locate(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		path := opts.ConfigFilePath.String()
		if !fileExists(path) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestions(
					"Verify the file path is correct",
					"Check that the file exists and is readable",
					"Use 'bundlecell config show' to see default configuration",
				).
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
		return path, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath.String())
	if err != nil {
		return "", err
	}
	cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(cuePath) {
		return cuePath, nil
	}

	localCuePath := types.FilesystemPath(ConfigFileName + "." + ConfigFileExt)
	if opts.BaseDir != "" {
		localCuePath = opts.BaseDir.Join(localCuePath.String())
	}
	if fileExists(localCuePath.String()) {
		return localCuePath.String(), nil
	}
	return "", nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges its
// contents into Viper. Concrete(false) because every field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.Decode[map[string]any](schema, data,
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults)
	if err := v.MergeConfigMap(*configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// ValidateCUE checks data against the configuration schema without loading it.
func ValidateCUE(data []byte, filename string) error {
	_, err := schema.Validate(data, cueutil.WithFilename(filename), cueutil.WithConcrete(false))
	return err
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(cfgDir, 0o755)
}

// CreateDefaultConfig creates a default config file if it doesn't exist.
// It returns the file path and whether a file was written.
func CreateDefaultConfig() (string, bool, error) {
	cfgPath, err := ConfigFilePath()
	if err != nil {
		return "", false, err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := SaveTo(cfgPath, DefaultConfig()); err != nil {
		return "", false, err
	}
	return cfgPath, true, nil
}

// Save writes the configuration to the default config file.
func Save(cfg *Config) error {
	cfgPath, err := ConfigFilePath()
	if err != nil {
		return err
	}
	return SaveTo(cfgPath, cfg)
}

// SaveTo writes the configuration as CUE to path, creating parent directories.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return issue.NewErrorContext().
			WithOperation("create config directory").
			WithResource(filepath.Dir(path)).
			WithIssue(issue.PermissionDeniedId).
			Wrap(err).
			BuildError()
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return issue.NewErrorContext().
			WithOperation("write config file").
			WithResource(path).
			WithIssue(issue.PermissionDeniedId).
			Wrap(err).
			BuildError()
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// bundlecell configuration file\n\n")

	// UI config
	sb.WriteString("ui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	// Cache config
	sb.WriteString("\ncache: {\n")
	fmt.Fprintf(&sb, "\tmax_entries: %d\n", cfg.Cache.MaxEntries)
	sb.WriteString("}\n")

	// Environments
	if len(cfg.Environments) > 0 {
		sb.WriteString("\nenvironments: {\n")
		for _, name := range sortedNames(cfg.Environments) {
			env := cfg.Environments[name]
			fmt.Fprintf(&sb, "\t%q: {\n", name)
			fmt.Fprintf(&sb, "\t\tkind: %q\n", env.Kind)
			if len(env.Targets) > 0 {
				sb.WriteString("\t\ttargets: [\n")
				for _, t := range env.Targets {
					fmt.Fprintf(&sb, "\t\t\t{engine: %q, version: %q},\n", t.Engine, t.Version)
				}
				sb.WriteString("\t\t]\n")
			}
			sb.WriteString("\t}\n")
		}
		sb.WriteString("}\n")
	}

	// Module options
	mo := cfg.ModuleOptions
	sb.WriteString("\nmodule_options: {\n")
	fmt.Fprintf(&sb, "\tenable_emotion: %v\n", mo.EnableEmotion)
	fmt.Fprintf(&sb, "\tenable_react_refresh: %v\n", mo.EnableReactRefresh)
	fmt.Fprintf(&sb, "\tenable_styled_components: %v\n", mo.EnableStyledComponents)
	fmt.Fprintf(&sb, "\tenable_styled_jsx: %v\n", mo.EnableStyledJSX)
	fmt.Fprintf(&sb, "\tenable_typescript_transform: %v\n", mo.EnableTypeScriptTransform)
	if mo.PresetEnv != "" {
		fmt.Fprintf(&sb, "\tpreset_env: %q\n", mo.PresetEnv)
	}
	writeTransformsCUE(&sb, "custom_ecmascript_app_transforms", mo.CustomEcmascriptAppTransforms)
	writeTransformsCUE(&sb, "custom_ecmascript_transforms", mo.CustomEcmascriptTransforms)
	sb.WriteString("}\n")

	return sb.String()
}

func writeTransformsCUE(sb *strings.Builder, field string, ts []TransformConfig) {
	if len(ts) == 0 {
		fmt.Fprintf(sb, "\t%s: []\n", field)
		return
	}
	fmt.Fprintf(sb, "\t%s: [\n", field)
	for _, t := range ts {
		parts := []string{fmt.Sprintf("kind: %q", t.Kind)}
		if t.Name != "" {
			parts = append(parts, fmt.Sprintf("name: %q", t.Name))
		}
		if t.Refresh {
			parts = append(parts, "refresh: true")
		}
		if t.Environment != "" {
			parts = append(parts, fmt.Sprintf("environment: %q", t.Environment))
		}
		fmt.Fprintf(sb, "\t\t{%s},\n", strings.Join(parts, ", "))
	}
	sb.WriteString("\t]\n")
}

// SettableKeys lists the keys accepted by Set.
func SettableKeys() []string {
	return []string{
		"cache.max_entries",
		"module_options.enable_emotion",
		"module_options.enable_react_refresh",
		"module_options.enable_styled_components",
		"module_options.enable_styled_jsx",
		"module_options.enable_typescript_transform",
		"module_options.preset_env",
		"ui.color_scheme",
		"ui.verbose",
	}
}

// Set assigns a scalar value by dotted key and re-validates the result.
func (c *Config) Set(key, value string) error {
	next := *c
	var err error
	switch key {
	case "ui.color_scheme":
		next.UI.ColorScheme = ColorScheme(value)
	case "ui.verbose":
		next.UI.Verbose, err = strconv.ParseBool(value)
	case "cache.max_entries":
		next.Cache.MaxEntries, err = strconv.Atoi(value)
	case "module_options.enable_emotion":
		next.ModuleOptions.EnableEmotion, err = strconv.ParseBool(value)
	case "module_options.enable_react_refresh":
		next.ModuleOptions.EnableReactRefresh, err = strconv.ParseBool(value)
	case "module_options.enable_styled_components":
		next.ModuleOptions.EnableStyledComponents, err = strconv.ParseBool(value)
	case "module_options.enable_styled_jsx":
		next.ModuleOptions.EnableStyledJSX, err = strconv.ParseBool(value)
	case "module_options.enable_typescript_transform":
		next.ModuleOptions.EnableTypeScriptTransform, err = strconv.ParseBool(value)
	case "module_options.preset_env":
		next.ModuleOptions.PresetEnv = EnvironmentName(value)
	default:
		return fmt.Errorf("unknown config key %q (settable: %s)", key, strings.Join(SettableKeys(), ", "))
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	if valid, errs := next.IsValid(); !valid {
		return errs[0]
	}
	*c = next
	return nil
}

func sortedNames[V any](m map[EnvironmentName]V) []EnvironmentName {
	return slices.Sorted(maps.Keys(m))
}
