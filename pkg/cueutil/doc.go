// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and
// decodes them into Go values.
//
//	//go:embed config_schema.cue
//	var schemaSource string
//
//	schema := cueutil.NewSchema(schemaSource, "#Config")
//	cfg, err := cueutil.Decode[map[string]any](schema, data,
//	    cueutil.WithFilename("config.cue"),
//	    cueutil.WithConcrete(false),
//	)
//
// Errors carry JSON-path prefixes (e.g. "environments.legacy.targets[0].version")
// so users can locate the offending value.
package cueutil
