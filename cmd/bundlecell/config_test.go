// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bundlecell/bundlecell/internal/config"
	"github.com/bundlecell/bundlecell/internal/issue"
	"github.com/bundlecell/bundlecell/internal/testutil"
)

func TestConfigShow(t *testing.T) {
	t.Parallel()

	app, stdout, dir := newTestApp(t)
	path := testutil.MustWriteFile(t, dir, "config.cue", sampleConfig)

	if err := runCommand(app, "config", "show"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{path, "max_entries", "legacy", "safari 12", "server", "preset_env", "enable_typescript_transform"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShow_Defaults(t *testing.T) {
	t.Parallel()

	app, stdout, _ := newTestApp(t)
	if err := runCommand(app, "config", "show"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "(using defaults)") || !strings.Contains(out, "(none configured)") {
		t.Errorf("expected defaults in output:\n%s", out)
	}
}

func TestConfigPath(t *testing.T) {
	t.Parallel()

	app, stdout, dir := newTestApp(t)
	if err := runCommand(app, "config", "path"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := stdout.String(); !strings.Contains(out, "Config directory: "+dir) {
		t.Errorf("expected config directory %s in output:\n%s", dir, out)
	}
}

func TestConfigDump(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  string
		want    []string
		wantErr bool
	}{
		{format: "cue", want: []string{"module_options:", `preset_env: "legacy"`}},
		{format: "toml", want: []string{"[module_options]", "preset_env", "legacy"}},
		{format: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			app, stdout, dir := newTestApp(t)
			testutil.MustWriteFile(t, dir, "config.cue", sampleConfig)

			err := runCommand(app, "config", "dump", "--format", tt.format)
			if tt.wantErr {
				if !errors.Is(err, config.ErrUnknownFormat) {
					t.Fatalf("expected ErrUnknownFormat, got %v", err)
				}
				var ae *issue.ActionableError
				if !errors.As(err, &ae) || ae.Operation != "encode configuration" {
					t.Errorf("expected an encode configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("dump output missing %q:\n%s", want, stdout.String())
				}
			}
		})
	}
}

func TestConfigSet(t *testing.T) {
	t.Parallel()

	app, _, dir := newTestApp(t)
	path := testutil.MustWriteFile(t, dir, "config.cue", sampleConfig)

	if err := runCommand(app, "config", "set", "module_options.enable_emotion", "true"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := app.Config.Load(context.Background(), app.LoadOptions)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !cfg.ModuleOptions.EnableEmotion {
		t.Error("enable_emotion should be persisted")
	}
	if cfg.ModuleOptions.PresetEnv != "legacy" || len(cfg.Environments) != 2 {
		t.Errorf("unrelated settings should survive the rewrite, got %+v", cfg.ModuleOptions)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "enable_emotion: true") {
		t.Errorf("config file not rewritten:\n%s", data)
	}
}

func TestConfigSet_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"config", "set", "ui.theme", "x"}},
		{"bad bool", []string{"config", "set", "ui.verbose", "maybe"}},
		{"bad color scheme", []string{"config", "set", "ui.color_scheme", "neon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _, dir := newTestApp(t)
			if err := runCommand(app, tt.args...); err == nil {
				t.Fatal("expected error")
			}
			if _, err := os.Stat(filepath.Join(dir, "config.cue")); !os.IsNotExist(err) {
				t.Error("a rejected value must not write a config file")
			}
		})
	}
}
