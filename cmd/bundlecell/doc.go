// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the bundlecell CLI commands.
//
// The command tree inspects how a configuration file resolves into an
// interned ModuleOptionsContext: which cell it maps to, the transform plan it
// implies and the esbuild options a compiler would run with.
package cmd
