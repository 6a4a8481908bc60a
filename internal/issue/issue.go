// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

const (
	ConfigLoadFailedId Id = iota + 1
	ConfigParseErrorId
	ConfigInvalidId
	EnvironmentNotFoundId
	InvalidTransformId
	TransformCycleId
	CompileFailedId
	PermissionDeniedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a catalog entry: Markdown guidance for one class of failure.
	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink  // documentation for this class of failure
		extLinks []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue Markdown with the glamour style at stylePath
// ("dark", "light", "auto" or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read.

## Things you can try:
- Check the path passed with ` + "`--config`" + `
- Print the default location:
~~~
$ bundlecell config path
~~~

- Create a default configuration:
~~~
$ bundlecell config init
~~~`,
	}

	configParseErrorIssue = &Issue{
		id: ConfigParseErrorId,
		mdMsg: `
# Configuration does not match the schema!

The file is not valid CUE, or a value does not satisfy the configuration schema.
The error names the offending field, e.g. ` + "`environments.legacy.targets[0].version`" + `.

## Things you can try:
- Compare with the generated default:
~~~
$ bundlecell config show
~~~

- Environment names must be lowercase (` + "`[a-z][a-z0-9_-]*`" + `)
- Versions look like ` + "`120`, `15.4` or `18.17.1`",
		extLinks: []HttpLink{"https://cuelang.org/docs/tour/"},
	}

	configInvalidIssue = &Issue{
		id: ConfigInvalidId,
		mdMsg: `
# Invalid configuration value!

The configuration parsed, but a value is not allowed.

## Things you can try:
- ` + "`ui.color_scheme`" + ` must be one of auto, dark, light
- ` + "`cache.max_entries`" + ` must be zero (unbounded) or positive`,
	}

	environmentNotFoundIssue = &Issue{
		id: EnvironmentNotFoundId,
		mdMsg: `
# Environment not defined!

A preset environment is referenced by name, but no environment with that name exists.

## Things you can try:
- Define it under ` + "`environments`" + `:
~~~cue
environments: legacy: {
	kind: "browser"
	targets: [{engine: "safari", version: "12"}]
}
~~~

- Remove ` + "`module_options.preset_env`" + ` to use the ambient target`,
	}

	invalidTransformIssue = &Issue{
		id: InvalidTransformId,
		mdMsg: `
# Invalid transform!

A custom transform entry has fields that do not fit its kind.

## Rules:
- ` + "`custom`" + ` needs a non-empty ` + "`name`" + `
- ` + "`preset_env`" + ` needs an ` + "`environment`" + `
- ` + "`refresh`" + ` is only allowed on ` + "`react`",
	}

	transformCycleIssue = &Issue{
		id: TransformCycleId,
		mdMsg: `
# Transform stages form a cycle!

The stage ordering has a cycle, so no transform plan can be produced.

## Things you can try:
- Run with ` + "`--verbose`" + ` to see the stages involved`,
	}

	compileFailedIssue = &Issue{
		id: CompileFailedId,
		mdMsg: `
# Compilation failed!

esbuild rejected the source under the resolved module options.

## Things you can try:
- Enable TypeScript stripping for ` + "`.ts`/`.tsx`" + ` sources:
~~~cue
module_options: enable_typescript_transform: true
~~~`,
		extLinks: []HttpLink{"https://esbuild.github.io/api/#transform"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

The configuration directory or file cannot be written.

## Things you can try:
- Check file/directory permissions
- Point ` + "`--config`" + ` at a file you own`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		configParseErrorIssue.Id():    configParseErrorIssue,
		configInvalidIssue.Id():       configInvalidIssue,
		environmentNotFoundIssue.Id(): environmentNotFoundIssue,
		invalidTransformIssue.Id():    invalidTransformIssue,
		transformCycleIssue.Id():      transformCycleIssue,
		compileFailedIssue.Id():       compileFailedIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
	}
)

// Values returns every catalog entry, ordered by Id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
