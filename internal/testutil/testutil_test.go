// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMustWriteFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "dir")
	path := MustWriteFile(t, dir, "config.cue", "ui: verbose: true\n")

	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "ui: verbose: true\n" {
		t.Errorf("content = %q", data)
	}
}

func TestMustSetenv_Restores(t *testing.T) {
	const key = "BUNDLECELL_TESTUTIL_PROBE"
	restore := MustSetenv(t, key, "one")
	if os.Getenv(key) != "one" {
		t.Fatalf("%s not set", key)
	}
	restore()
	if _, ok := os.LookupEnv(key); ok {
		t.Errorf("%s should be unset after restore", key)
	}
}

func TestQuietLogger(t *testing.T) {
	t.Parallel()

	l := QuietLogger()
	if l == nil {
		t.Fatal("QuietLogger() returned nil")
	}
	l.Info("dropped", "key", "value")
}
