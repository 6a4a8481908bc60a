// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/bundlecell/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/bundlecell/config.cue on macOS, %APPDATA%\bundlecell\config.cue
// on Windows), or from ./config.cue when no user file exists. It covers UI settings, the
// option cell cache, named target environments and the module options that Resolve turns
// into a moduleoptions.ModuleOptionsContext.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
