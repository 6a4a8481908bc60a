// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bundlecell/bundlecell/internal/issue"
	"github.com/bundlecell/bundlecell/internal/pipeline"
	"github.com/bundlecell/bundlecell/pkg/moduleoptions"
	"github.com/bundlecell/bundlecell/pkg/transform"
	"github.com/bundlecell/bundlecell/pkg/types"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/cobra"
)

var (
	loaderNames = map[api.Loader]string{
		api.LoaderJSX: "jsx",
		api.LoaderTSX: "tsx",
	}

	platformNames = map[api.Platform]string{
		api.PlatformBrowser: "browser",
		api.PlatformNode:    "node",
		api.PlatformNeutral: "neutral",
	}

	esbuildEngineNames = map[api.EngineName]string{
		api.EngineChrome:  "chrome",
		api.EngineDeno:    "deno",
		api.EngineEdge:    "edge",
		api.EngineFirefox: "firefox",
		api.EngineIOS:     "ios",
		api.EngineNode:    "node",
		api.EngineOpera:   "opera",
		api.EngineSafari:  "safari",
	}
)

// newOptionsCommand creates the `bundlecell options` command tree.
func newOptionsCommand(app *App) *cobra.Command {
	optsCmd := &cobra.Command{
		Use:   "options",
		Short: "Inspect the resolved module options",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	optsCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved module options cell",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showOptions(cmd.Context(), app)
		},
	})

	optsCmd.AddCommand(&cobra.Command{
		Use:   "plan",
		Short: "Show the ordered transform plan and esbuild options",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showPlan(cmd.Context(), app)
		},
	})

	optsCmd.AddCommand(&cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a source file with the resolved options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return compileFile(cmd.Context(), app, args[0])
		},
	})

	return optsCmd
}

func showOptions(ctx context.Context, app *App) error {
	res, err := app.resolve(ctx)
	if err != nil {
		return err
	}
	vc := res.Vc
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Module Options"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("cell"), vc.String())
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("default"), toggle(vc.Equal(moduleoptions.DefaultVc())))
	stats := app.Store(res.Config).Stats()
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("store"),
		SubtitleStyle.Render(fmt.Sprintf("%d entries, %d hits, %d misses", stats.Entries, stats.Hits, stats.Misses)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  enable_emotion: %s\n", toggle(vc.EnableEmotion()))
	fmt.Fprintf(w, "  enable_react_refresh: %s\n", toggle(vc.EnableReactRefresh()))
	fmt.Fprintf(w, "  enable_styled_components: %s\n", toggle(vc.EnableStyledComponents()))
	fmt.Fprintf(w, "  enable_styled_jsx: %s\n", toggle(vc.EnableStyledJSX()))
	fmt.Fprintf(w, "  enable_typescript_transform: %s\n", toggle(vc.EnableTypeScriptTransform()))
	if env := vc.PresetEnvVersions(); env != nil {
		fmt.Fprintf(w, "  preset_env: %s\n", SuccessStyle.Render(env.String()))
	} else {
		fmt.Fprintf(w, "  preset_env: %s\n", SubtitleStyle.Render("(ambient)"))
	}
	writeTransforms(w, "custom_ecmascript_app_transforms", vc.CustomEcmascriptAppTransforms())
	writeTransforms(w, "custom_ecmascript_transforms", vc.CustomEcmascriptTransforms())
	return nil
}

func writeTransforms(w io.Writer, label string, ts []transform.Transform) {
	fmt.Fprintf(w, "  %s:\n", label)
	if len(ts) == 0 {
		fmt.Fprintf(w, "    %s\n", SubtitleStyle.Render("(none)"))
		return
	}
	for _, t := range ts {
		fmt.Fprintf(w, "    - %s\n", t.String())
	}
}

func showPlan(ctx context.Context, app *App) error {
	res, err := app.resolve(ctx)
	if err != nil {
		return err
	}

	steps, err := pipeline.NewPlanner().Steps(res.Vc)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("plan transforms").
			WithIssue(issue.TransformCycleId).
			Wrap(err).
			BuildError()
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Transform Plan"))
	fmt.Fprintln(w)
	if len(steps) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(no transforms)"))
	}
	for i, step := range steps {
		fmt.Fprintf(w, "  %2d. %s %s\n", i+1, KeyStyle.Render(fmt.Sprintf("[%s]", step.Stage)), step.Transform.String())
	}

	opts := pipeline.EsbuildOptions(res.Vc)
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("esbuild"))
	fmt.Fprintf(w, "  loader: %s\n", loaderNames[opts.Loader])
	fmt.Fprintf(w, "  jsx_dev: %s\n", toggle(opts.JSXDev))
	if name, ok := platformNames[opts.Platform]; ok && res.Vc.PresetEnvVersions() != nil {
		fmt.Fprintf(w, "  platform: %s\n", name)
	}
	if len(opts.Engines) == 0 {
		fmt.Fprintf(w, "  target: %s\n", "esnext")
		return nil
	}
	engines := make([]string, 0, len(opts.Engines))
	for _, e := range opts.Engines {
		engines = append(engines, esbuildEngineNames[e.Name]+e.Version)
	}
	fmt.Fprintf(w, "  engines: %s\n", strings.Join(engines, ", "))
	return nil
}

func compileFile(ctx context.Context, app *App, path string) error {
	res, err := app.resolve(ctx)
	if err != nil {
		return err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return issue.WrapWithContext(err, "read source file", path)
	}

	out, err := pipeline.Compile(res.Vc, filepath.Base(path), string(source))
	if err != nil {
		if errors.Is(err, pipeline.ErrCompile) {
			return &ExitError{
				Code: types.ExitCompileFailed,
				Err: issue.NewErrorContext().
					WithOperation("compile module").
					WithResource(path).
					WithIssue(issue.CompileFailedId).
					Wrap(err).
					BuildError(),
			}
		}
		return err
	}

	_, err = io.WriteString(app.stdout, out)
	return err
}
