// SPDX-License-Identifier: MPL-2.0

// Package environment defines the compilation target descriptors that module
// options reference but never own.
//
// An Environment is immutable and identified by a process-unique ID assigned
// at construction. The Registry is the owner: it maps names to the current
// descriptor, and redefining a name produces a new identity rather than
// mutating the old descriptor in place.
package environment
