// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions. It may link a catalog Issue whose Markdown guidance the CLI
// renders with glamour in verbose mode.
package issue
