// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/bundlecell/bundlecell/internal/config"
	"github.com/bundlecell/bundlecell/pkg/cell"
	"github.com/bundlecell/bundlecell/pkg/environment"
	"github.com/bundlecell/bundlecell/pkg/moduleoptions"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App reference.
	App struct {
		Config   config.Provider
		Registry *environment.Registry
		Logger   *log.Logger
		// LoadOptions is filled from persistent flags before any handler runs.
		LoadOptions config.LoadOptions

		stdout io.Writer
		stderr io.Writer

		storeOnce sync.Once
		store     *moduleoptions.Store
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   config.Provider
		Registry *environment.Registry
		Logger   *log.Logger
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// resolved is one configuration load carried through to its interned cell.
	resolved struct {
		Config *config.Config
		Path   string
		Vc     moduleoptions.Vc
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Registry == nil {
		deps.Registry = environment.NewRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = log.NewWithOptions(deps.Stderr, log.Options{
			Prefix: config.AppName,
			Level:  log.InfoLevel,
		})
	}

	return &App{
		Config:   deps.Config,
		Registry: deps.Registry,
		Logger:   deps.Logger,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
}

// Store returns the interning store. Its size bound comes from the first
// configuration loaded; later loads reuse the same store.
func (a *App) Store(cfg *config.Config) *moduleoptions.Store {
	a.storeOnce.Do(func() {
		a.store = moduleoptions.NewStore(
			cell.WithMaxEntries(cfg.Cache.MaxEntries),
			cell.WithLogger(a.Logger.WithPrefix("cell")),
		)
	})
	return a.store
}

// resolve loads the configuration, resolves it against the registry and
// interns the result.
func (a *App) resolve(ctx context.Context) (*resolved, error) {
	path, err := a.Config.Locate(a.LoadOptions)
	if err != nil {
		return nil, err
	}
	cfg, err := a.Config.Load(ctx, a.LoadOptions)
	if err != nil {
		return nil, err
	}

	value, err := config.Resolve(cfg, a.Registry)
	if err != nil {
		return nil, err
	}

	vc := a.Store(cfg).Cell(value)
	a.Logger.Debug("resolved module options", "cell", vc.String(), "path", path, "environments", a.Registry.Len())
	return &resolved{Config: cfg, Path: path, Vc: vc}, nil
}
