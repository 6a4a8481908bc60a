// SPDX-License-Identifier: MPL-2.0

// Package pipeline turns a module options handle into what a compiler
// consumes: the ordered transform plan and the esbuild transform options
// for the esbuild-expressible subset of that plan.
package pipeline
