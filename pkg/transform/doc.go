// SPDX-License-Identifier: MPL-2.0

// Package transform defines the ECMAScript input transforms that module
// options carry in ordered sequences. The option types only store and compare
// transforms; executing them belongs to the compiler.
package transform
