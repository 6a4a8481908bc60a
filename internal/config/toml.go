// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// Format selects the encoding used by Encode.
type Format string

const (
	// FormatCUE renders the configuration as CUE (the on-disk format).
	FormatCUE Format = "cue"
	// FormatTOML renders the configuration as TOML.
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned by Encode for unsupported formats.
var ErrUnknownFormat = errors.New("unknown format")

// Encode renders cfg in the requested format.
func Encode(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatCUE, "":
		return []byte(GenerateCUE(cfg)), nil
	case FormatTOML:
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config as TOML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w %q (valid: cue, toml)", ErrUnknownFormat, format)
	}
}

// DecodeTOML parses a TOML rendering produced by Encode.
func DecodeTOML(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML config: %w", err)
	}
	return cfg, nil
}
