// SPDX-License-Identifier: MPL-2.0

// Package types defines small validated value types shared by the config
// loader and the CLI. It imports only the standard library.
package types
