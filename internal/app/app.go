package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vk/torchgen/internal/codegen"
	"github.com/vk/torchgen/internal/ctxlog"
	"github.com/vk/torchgen/internal/progress"
	"github.com/vk/torchgen/internal/registry"
	"github.com/vk/torchgen/internal/upload"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	generator  *codegen.Generator
	uploader   *upload.Uploader
	reporter   progress.Reporter
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// With no modules, every kind compiled into the binary is available.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.NewWithModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.Validate(ctx); err != nil {
		// This is a programmer error (a handler declared wrongly), so we panic.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	gen, err := codegen.New(reg, codegen.Options{
		ClassName: cfg.ClassName,
		DataRoot:  cfg.DataRoot,
		Indent:    strings.Repeat(" ", cfg.IndentWidth),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		generator: gen,
		uploader:  upload.New(upload.DefaultTimeout),
		reporter:  progress.Nop{},
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// SetReporter replaces the progress reporter. Run dials its own reporter
// when a progress URL is configured and none was set.
func (a *App) SetReporter(r progress.Reporter) {
	a.reporter = r
}
