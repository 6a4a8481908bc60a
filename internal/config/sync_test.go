// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/bundlecell/bundlecell/pkg/cueutil"
	"github.com/bundlecell/bundlecell/pkg/environment"
	"github.com/bundlecell/bundlecell/pkg/transform"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// configSchema is embedded in config.go and available to tests via the same package.

// Schema sync tests verify Go struct JSON tags match CUE schema field names,
// catching misalignments that would otherwise parse silently.

// extractCUEFields extracts all field names from a CUE struct definition.
// It returns a map of field names to whether the field is optional.
// Nested struct fields are not included; only top-level fields of the given definition.
func extractCUEFields(t *testing.T, val cue.Value) map[string]bool {
	t.Helper()

	fields := make(map[string]bool)

	// Iterate over the struct fields
	iter, err := val.Fields(cue.Definitions(false), cue.Optional(true))
	if err != nil {
		t.Fatalf("failed to iterate CUE fields: %v", err)
	}

	for iter.Next() {
		sel := iter.Selector()
		// Skip hidden fields (start with _) and definitions (start with #)
		labelType := sel.LabelType()
		if labelType.IsHidden() || sel.IsDefinition() {
			continue
		}

		// Skip fields that are explicitly set to bottom (_|_) - these are error constraints
		// used to explicitly forbid certain field names.
		// We detect these by checking if the error message contains "explicit error (_|_ literal)".
		// This distinguishes between:
		// - "explicitly _|_" → skip, not a real field
		// - "constraint evaluation error" → include, valid field
		fieldValue := iter.Value()
		if fieldValue.Kind() == cue.BottomKind && fieldValue.Err() != nil {
			errMsg := fieldValue.Err().Error()
			if strings.Contains(errMsg, "explicit error (_|_ literal)") {
				continue
			}
		}

		// The selector string may include the "?" suffix for optional fields
		// We need to strip it to get the actual field name
		fieldName := sel.String()
		fieldName = strings.TrimSuffix(fieldName, "?")
		isOptional := iter.IsOptional()
		fields[fieldName] = isOptional
	}

	return fields
}

// extractGoJSONTags extracts all JSON field names from a Go struct using reflection.
// It returns a map of JSON tag names to whether the field has "omitempty".
// Fields with json:"-" are excluded.
// Embedded structs are not expanded; only direct fields are returned.
func extractGoJSONTags(t *testing.T, typ reflect.Type) map[string]bool {
	t.Helper()

	// Dereference pointer types
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		t.Fatalf("expected struct type, got %s", typ.Kind())
	}

	fields := make(map[string]bool)

	for i := range typ.NumField() {
		field := typ.Field(i)
		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("json")
		if tag == "" || tag == "-" {
			// No json tag or explicitly excluded
			continue
		}

		// Parse the tag: "name,omitempty" or just "name"
		parts := strings.Split(tag, ",")
		name := parts[0]
		if name == "" || name == "-" {
			continue
		}

		hasOmitempty := slices.Contains(parts[1:], "omitempty")

		fields[name] = hasOmitempty
	}

	return fields
}

// assertFieldsSync verifies that CUE schema fields and Go struct JSON tags are in sync.
// It checks:
// 1. Every CUE field has a corresponding Go JSON tag
// 2. Every Go JSON tag has a corresponding CUE field
// 3. Optional/omitempty alignment (warning only, not a failure)
func assertFieldsSync(t *testing.T, structName string, cueFields, goFields map[string]bool) {
	t.Helper()

	// Check CUE fields exist in Go struct
	for field, isOptional := range cueFields {
		hasOmitempty, exists := goFields[field]
		if !exists {
			t.Errorf("[%s] CUE field %q not found in Go struct (missing JSON tag)", structName, field)
			continue
		}
		// Warn about optional/omitempty mismatch (not a hard failure)
		if isOptional && !hasOmitempty {
			t.Logf("[%s] Note: CUE field %q is optional but Go field lacks omitempty tag", structName, field)
		}
	}

	// Check Go fields exist in CUE schema
	for field := range goFields {
		if _, exists := cueFields[field]; !exists {
			t.Errorf("[%s] Go JSON tag %q not found in CUE schema (missing CUE field)", structName, field)
		}
	}
}

// getCUESchema compiles the embedded CUE schema and returns the context and compiled value.
func getCUESchema(t *testing.T) (cue.Value, *cue.Context) {
	t.Helper()

	ctx := cuecontext.New()
	schema := ctx.CompileString(configSchema)
	if schema.Err() != nil {
		t.Fatalf("failed to compile CUE schema: %v", schema.Err())
	}

	return schema, ctx
}

// lookupDefinition looks up a CUE definition by path (e.g., "#Config").
func lookupDefinition(t *testing.T, schema cue.Value, defPath string) cue.Value {
	t.Helper()

	def := schema.LookupPath(cue.ParsePath(defPath))
	if def.Err() != nil {
		t.Fatalf("failed to lookup CUE definition %s: %v", defPath, def.Err())
	}

	return def
}

// TestSchemaSync verifies each Go struct matches its CUE definition.
func TestSchemaSync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		definition string
		typ        reflect.Type
	}{
		{"#Config", reflect.TypeFor[Config]()},
		{"#UIConfig", reflect.TypeFor[UIConfig]()},
		{"#CacheConfig", reflect.TypeFor[CacheConfig]()},
		{"#EnvironmentConfig", reflect.TypeFor[EnvironmentConfig]()},
		{"#Target", reflect.TypeFor[environment.Target]()},
		{"#TransformConfig", reflect.TypeFor[TransformConfig]()},
		{"#ModuleOptionsConfig", reflect.TypeFor[ModuleOptionsConfig]()},
	}

	for _, tt := range tests {
		t.Run(tt.definition, func(t *testing.T) {
			t.Parallel()
			schema, _ := getCUESchema(t)
			cueFields := extractCUEFields(t, lookupDefinition(t, schema, tt.definition))
			goFields := extractGoJSONTags(t, tt.typ)
			assertFieldsSync(t, tt.typ.Name(), cueFields, goFields)
		})
	}
}

// TestSchemaEnumsSync verifies the CUE enumerations accept every value the
// Go validators accept.
func TestSchemaEnumsSync(t *testing.T) {
	t.Parallel()

	for _, kind := range []environment.Kind{environment.KindBrowser, environment.KindNode, environment.KindEdge} {
		data := fmt.Sprintf("environments: e: kind: %q\n", kind)
		if err := validateCUE(t, data); err != nil {
			t.Errorf("kind %q rejected by schema: %v", kind, err)
		}
	}

	engines := []environment.Engine{
		environment.EngineChrome, environment.EngineDeno, environment.EngineEdge, environment.EngineFirefox,
		environment.EngineIOS, environment.EngineNode, environment.EngineOpera, environment.EngineSafari,
	}
	for _, engine := range engines {
		data := fmt.Sprintf("environments: e: {kind: \"node\", targets: [{engine: %q, version: \"1\"}]}\n", engine)
		if err := validateCUE(t, data); err != nil {
			t.Errorf("engine %q rejected by schema: %v", engine, err)
		}
	}

	kinds := []transform.Kind{
		transform.KindCommonJS, transform.KindCustom, transform.KindEmotion, transform.KindPresetEnv,
		transform.KindReact, transform.KindStyledComponents, transform.KindStyledJSX, transform.KindTypeScript,
	}
	for _, kind := range kinds {
		data := fmt.Sprintf("module_options: custom_ecmascript_transforms: [{kind: %q}]\n", kind)
		if err := validateCUE(t, data); err != nil {
			t.Errorf("transform kind %q rejected by schema: %v", kind, err)
		}
	}
}

// TestSchemaConstraints verifies boundary conditions the schema enforces at
// parse time.
func TestSchemaConstraints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cueData string
		wantErr bool
	}{
		{name: "empty config accepted", cueData: ``},
		{name: "zero cache accepted", cueData: `cache: max_entries: 0`},
		{name: "negative cache rejected", cueData: `cache: max_entries: -1`, wantErr: true},
		{name: "fractional cache rejected", cueData: `cache: max_entries: 1.5`, wantErr: true},
		{name: "lowercase env name accepted", cueData: `environments: "legacy-2_x": kind: "browser"`},
		{name: "uppercase env name rejected", cueData: `environments: Legacy: kind: "browser"`, wantErr: true},
		{name: "env name with dot rejected", cueData: `environments: "a.b": kind: "browser"`, wantErr: true},
		{name: "env kind required", cueData: `environments: legacy: targets: []`, wantErr: true},
		{name: "three-part version accepted", cueData: `environments: n: {kind: "node", targets: [{engine: "node", version: "18.17.1"}]}`},
		{name: "four-part version rejected", cueData: `environments: n: {kind: "node", targets: [{engine: "node", version: "1.2.3.4"}]}`, wantErr: true},
		{name: "unknown engine rejected", cueData: `environments: n: {kind: "node", targets: [{engine: "bun", version: "1"}]}`, wantErr: true},
		{name: "empty transform name rejected", cueData: `module_options: custom_ecmascript_transforms: [{kind: "custom", name: ""}]`, wantErr: true},
		{name: "128-rune transform name accepted", cueData: `module_options: custom_ecmascript_transforms: [{kind: "custom", name: "` + strings.Repeat("a", 128) + `"}]`},
		{name: "129-rune transform name rejected", cueData: `module_options: custom_ecmascript_transforms: [{kind: "custom", name: "` + strings.Repeat("a", 129) + `"}]`, wantErr: true},
		{name: "preset_env name pattern", cueData: `module_options: preset_env: "Legacy"`, wantErr: true},
		{name: "unknown top-level field rejected", cueData: `container_engine: "podman"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateCUE(t, tt.cueData)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
		})
	}
}

// validateCUE validates test data against #Config, requiring concrete values.
func validateCUE(t *testing.T, cueData string) error {
	t.Helper()
	_, err := schema.Validate([]byte(cueData), cueutil.WithFilename("test.cue"))
	return err
}
