package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/torchgen/internal/ctxlog"
	"github.com/vk/torchgen/internal/executor"
	"github.com/vk/torchgen/internal/fsutil"
	"github.com/vk/torchgen/internal/progress"
)

// inputExtensions are the document types batch mode picks up.
var inputExtensions = []string{".json", ".hcl"}

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.ProgressURL != "" {
		if _, isNop := a.reporter.(progress.Nop); isNop {
			a.dialReporter(ctx)
		}
	}
	defer func() {
		if err := a.reporter.Close(); err != nil {
			a.logger.Warn("Failed to close progress reporter.", "error", err)
		}
	}()

	a.logger.Debug("Kinds registered.",
		"layers", a.registry.SupportedLayers(),
		"losses", a.registry.SupportedLosses(),
		"optimizers", a.registry.SupportedOptimizers(),
		"datasets", a.registry.SupportedDatasets(),
	)

	if a.config.ServePort > 0 {
		return a.Serve(ctx)
	}

	info, err := os.Stat(a.config.InputPath)
	if err != nil {
		return fmt.Errorf("failed to access input '%s': %w", a.config.InputPath, err)
	}
	if info.IsDir() {
		return a.runBatch(ctx)
	}

	if err := a.CompileFile(ctx, a.config.InputPath, a.config.OutputPath); err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) dialReporter(ctx context.Context) {
	r, err := progress.Dial(ctx, a.config.ProgressURL, progress.DialOptions{})
	if err != nil {
		a.logger.Warn("Progress endpoint unreachable, continuing without progress events.", "url", a.config.ProgressURL, "error", err)
		return
	}
	a.reporter = r
}

// batchOutputDir is the directory batch mode writes into. An output path
// naming a .py file stands for the directory containing it.
func batchOutputDir(outputPath string) string {
	if strings.EqualFold(filepath.Ext(outputPath), ".py") {
		return filepath.Dir(outputPath)
	}
	return outputPath
}

// runBatch compiles every document under the input directory. A failing
// document does not stop the others; all failures are returned together.
func (a *App) runBatch(ctx context.Context) error {
	if a.config.NotebookPath != "" || a.config.UploadURL != "" {
		return errors.New("notebook and upload options need a single input file, not a directory")
	}

	files, err := fsutil.FindFilesByExtension(a.config.InputPath, inputExtensions...)
	if err != nil {
		return fmt.Errorf("failed to discover model documents: %w", err)
	}
	if len(files) == 0 {
		a.logger.Warn("No model documents found, nothing to compile.", "input", a.config.InputPath)
		return nil
	}

	outDir := batchOutputDir(a.config.OutputPath)
	a.logger.Info("Compiling model documents.", "count", len(files), "output_dir", outDir, "workers", a.config.WorkerCount)

	tasks := make([]executor.Task, len(files))
	owners := make(map[string]string, len(files))
	var collisions []error
	for i, in := range files {
		rel, err := filepath.Rel(a.config.InputPath, in)
		if err != nil {
			rel = filepath.Base(in)
		}
		out := filepath.Join(outDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".py")
		if prev, taken := owners[out]; taken {
			collisions = append(collisions, fmt.Errorf("documents '%s' and '%s' both compile to '%s'", prev, in, out))
			continue
		}
		owners[out] = in
		tasks[i] = executor.Task{
			ID:  in,
			Run: func(ctx context.Context) error { return a.CompileFile(ctx, in, out) },
		}
	}
	// Nothing is compiled while two documents would overwrite each other.
	if len(collisions) > 0 {
		return fmt.Errorf("ambiguous batch output: %w", errors.Join(collisions...))
	}

	var errs []error
	for _, res := range executor.New(a.config.WorkerCount).Execute(ctx, tasks) {
		if res.Err != nil {
			a.logger.Error("Failed to compile model document.", "input", res.ID, "error", res.Err)
			errs = append(errs, res.Err)
		}
	}

	a.logger.Info("Batch finished.", "compiled", len(files)-len(errs), "failed", len(errs))
	return errors.Join(errs...)
}
