// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// SetHomeDir points the platform home variable (USERPROFILE on Windows,
// HOME elsewhere) at dir and returns a function restoring the old value.
//
//	t.Cleanup(testutil.SetHomeDir(t, t.TempDir()))
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		return MustSetenv(t, "USERPROFILE", dir)
	default:
		return MustSetenv(t, "HOME", dir)
	}
}

// IsolateConfigHome makes home the only input to the config directory
// lookup: it sets the home variable and unsets XDG_CONFIG_HOME and APPDATA.
// The returned function restores all three.
func IsolateConfigHome(t testing.TB, home string) func() {
	t.Helper()

	restoreHome := SetHomeDir(t, home)
	restoreXDG := MustUnsetenv(t, "XDG_CONFIG_HOME")
	restoreAppData := MustUnsetenv(t, "APPDATA")
	return func() {
		restoreAppData()
		restoreXDG()
		restoreHome()
	}
}
