// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestEncode_TOMLRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := resolvableConfig()
	cfg.UI.ColorScheme = ColorSchemeLight
	cfg.Cache.MaxEntries = 64

	data, err := Encode(cfg, FormatTOML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), "[environments.legacy]") {
		t.Errorf("expected an environments.legacy table, got:\n%s", data)
	}

	decoded, err := DecodeTOML(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(cfg, decoded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_CUE(t *testing.T) {
	t.Parallel()

	cfg := resolvableConfig()
	for _, format := range []Format{FormatCUE, ""} {
		data, err := Encode(cfg, format)
		if err != nil {
			t.Fatalf("Encode(%q) error: %v", format, err)
		}
		if string(data) != GenerateCUE(cfg) {
			t.Errorf("Encode(%q) should match GenerateCUE", format)
		}
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := Encode(DefaultConfig(), "yaml")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), `"yaml"`) {
		t.Errorf("error should name the format, got %v", err)
	}
}

func TestDecodeTOML_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := DecodeTOML([]byte("ui = [")); err == nil {
		t.Fatal("expected error for malformed TOML")
	}
}
