// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bundlecell/bundlecell/pkg/environment"
	"github.com/bundlecell/bundlecell/pkg/moduleoptions"

	"github.com/evanw/esbuild/pkg/api"
)

// ErrCompile is returned when esbuild rejects the source.
var ErrCompile = errors.New("compile failed")

var engineNames = map[environment.Engine]api.EngineName{
	environment.EngineChrome:  api.EngineChrome,
	environment.EngineDeno:    api.EngineDeno,
	environment.EngineEdge:    api.EngineEdge,
	environment.EngineFirefox: api.EngineFirefox,
	environment.EngineIOS:     api.EngineIOS,
	environment.EngineNode:    api.EngineNode,
	environment.EngineOpera:   api.EngineOpera,
	environment.EngineSafari:  api.EngineSafari,
}

var platforms = map[environment.Kind]api.Platform{
	environment.KindBrowser: api.PlatformBrowser,
	environment.KindNode:    api.PlatformNode,
	environment.KindEdge:    api.PlatformNeutral,
}

// EsbuildOptions maps vc onto esbuild transform options. Only the loader,
// JSX runtime and lowering target are expressible there; styling and custom
// transforms stay in the plan.
func EsbuildOptions(vc moduleoptions.Vc) api.TransformOptions {
	opts := api.TransformOptions{
		Loader: api.LoaderJSX,
		JSX:    api.JSXAutomatic,
		JSXDev: vc.EnableReactRefresh(),
		Target: api.ESNext,
	}
	if vc.EnableTypeScriptTransform() {
		opts.Loader = api.LoaderTSX
	}

	env := vc.PresetEnvVersions()
	if env == nil {
		return opts
	}
	opts.Platform = platforms[env.Kind()]
	for _, t := range env.Targets() {
		if name, ok := engineNames[t.Engine]; ok {
			opts.Engines = append(opts.Engines, api.Engine{Name: name, Version: t.Version})
		}
	}
	if len(opts.Engines) > 0 {
		opts.Target = api.DefaultTarget
	}
	return opts
}

// Compile runs esbuild's transform over source using EsbuildOptions(vc).
func Compile(vc moduleoptions.Vc, filename, source string) (string, error) {
	opts := EsbuildOptions(vc)
	opts.Sourcefile = filename

	result := api.Transform(source, opts)
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, msg := range result.Errors {
			msgs = append(msgs, msg.Text)
		}
		return "", fmt.Errorf("%w: %s: %s", ErrCompile, filename, strings.Join(msgs, "; "))
	}
	return string(result.Code), nil
}
