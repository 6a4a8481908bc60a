// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/bundlecell/bundlecell/internal/config"
)

func homeVar() string {
	if runtime.GOOS == "windows" {
		return "USERPROFILE"
	}
	return "HOME"
}

func TestSetHomeDir_Restores(t *testing.T) {
	// Not parallel: mutates process environment.
	envVar := homeVar()
	original, hadOriginal := os.LookupEnv(envVar)

	home := t.TempDir()
	t.Run("subtest", func(t *testing.T) {
		t.Cleanup(SetHomeDir(t, home))

		got, err := os.UserHomeDir()
		if err != nil {
			t.Fatalf("UserHomeDir() error: %v", err)
		}
		if got != home {
			t.Errorf("UserHomeDir() = %q, want %q", got, home)
		}
	})

	got, ok := os.LookupEnv(envVar)
	if ok != hadOriginal || got != original {
		t.Errorf("after cleanup %s = %q (set=%v), want %q (set=%v)", envVar, got, ok, original, hadOriginal)
	}
}

func TestIsolateConfigHome_DrivesConfigDir(t *testing.T) {
	// Not parallel: mutates process environment.
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg"))
	t.Setenv("APPDATA", filepath.Join(t.TempDir(), "appdata"))

	home := t.TempDir()
	restore := IsolateConfigHome(t, home)

	var want string
	switch runtime.GOOS {
	case "windows":
		want = filepath.Join(home, "AppData", "Roaming", config.AppName)
	case "darwin":
		want = filepath.Join(home, "Library", "Application Support", config.AppName)
	default:
		want = filepath.Join(home, ".config", config.AppName)
	}

	got, err := config.ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}

	restore()
	if os.Getenv("XDG_CONFIG_HOME") == "" || os.Getenv("APPDATA") == "" {
		t.Error("restore should put back XDG_CONFIG_HOME and APPDATA")
	}
}
