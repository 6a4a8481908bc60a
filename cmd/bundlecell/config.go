// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/bundlecell/bundlecell/internal/config"
	"github.com/bundlecell/bundlecell/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `bundlecell config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bundlecell configuration",
		Long: `Manage bundlecell configuration.

Configuration is stored in:
  - Linux: ~/.config/bundlecell/config.cue
  - macOS: ~/Library/Application Support/bundlecell/config.cue
  - Windows: %APPDATA%\bundlecell\config.cue

A config.cue in the working directory is used when no user config exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), app.LoadOptions)
			if err != nil {
				return err
			}
			data, err := config.Encode(cfg, config.Format(format))
			if err != nil {
				return issue.WrapWithOperation(err, "encode configuration")
			}
			_, err = app.stdout.Write(data)
			return err
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", string(config.FormatCUE), "output format (cue, toml)")
	cfgCmd.AddCommand(dumpCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value.\n\nSettable keys:\n  " + strings.Join(config.SettableKeys(), "\n  "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	path, err := app.Config.Locate(app.LoadOptions)
	if err != nil {
		return err
	}
	cfg, err := app.Config.Load(ctx, app.LoadOptions)
	if err != nil {
		fmt.Fprintln(app.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, true))
		return err
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", KeyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", SuccessStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", SuccessStyle.Render(fmt.Sprint(cfg.UI.Verbose)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", KeyStyle.Render("cache"))
	fmt.Fprintf(w, "  max_entries: %s\n", SuccessStyle.Render(fmt.Sprint(cfg.Cache.MaxEntries)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", KeyStyle.Render("environments"))
	if len(cfg.Environments) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, name := range sortedEnvironmentNames(cfg) {
		env := cfg.Environments[name]
		targets := make([]string, 0, len(env.Targets))
		for _, t := range env.Targets {
			targets = append(targets, t.String())
		}
		fmt.Fprintf(w, "  - %s (%s) %s\n", SuccessStyle.Render(name.String()), env.Kind, SubtitleStyle.Render(strings.Join(targets, ", ")))
	}

	mo := cfg.ModuleOptions
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", KeyStyle.Render("module_options"))
	fmt.Fprintf(w, "  enable_emotion: %s\n", toggle(mo.EnableEmotion))
	fmt.Fprintf(w, "  enable_react_refresh: %s\n", toggle(mo.EnableReactRefresh))
	fmt.Fprintf(w, "  enable_styled_components: %s\n", toggle(mo.EnableStyledComponents))
	fmt.Fprintf(w, "  enable_styled_jsx: %s\n", toggle(mo.EnableStyledJSX))
	fmt.Fprintf(w, "  enable_typescript_transform: %s\n", toggle(mo.EnableTypeScriptTransform))
	if mo.PresetEnv != "" {
		fmt.Fprintf(w, "  preset_env: %s\n", SuccessStyle.Render(mo.PresetEnv.String()))
	} else {
		fmt.Fprintf(w, "  preset_env: %s\n", SubtitleStyle.Render("(ambient)"))
	}
	fmt.Fprintf(w, "  custom_ecmascript_app_transforms: %d\n", len(mo.CustomEcmascriptAppTransforms))
	fmt.Fprintf(w, "  custom_ecmascript_transforms: %d\n", len(mo.CustomEcmascriptTransforms))

	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	if app.LoadOptions.ConfigDirPath != "" {
		cfgDir = app.LoadOptions.ConfigDirPath.String()
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	path, err := app.Config.Locate(app.LoadOptions)
	if err != nil {
		return err
	}
	if path == "" {
		path = SubtitleStyle.Render("(none, using defaults)")
	}
	fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	cfg, err := app.Config.Load(ctx, app.LoadOptions)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	path, err := app.Config.Locate(app.LoadOptions)
	if err != nil {
		return err
	}
	if path != "" {
		err = config.SaveTo(path, cfg)
	} else {
		err = config.Save(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

func toggle(enabled bool) string {
	if enabled {
		return SuccessStyle.Render("true")
	}
	return SubtitleStyle.Render("false")
}

func sortedEnvironmentNames(cfg *config.Config) []config.EnvironmentName {
	return slices.Sorted(maps.Keys(cfg.Environments))
}
