package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/torchgen/internal/config"
	"github.com/vk/torchgen/internal/ctxlog"
	"github.com/vk/torchgen/internal/hcl"
	"github.com/vk/torchgen/internal/notebook"
	"github.com/vk/torchgen/internal/packet"
	"github.com/vk/torchgen/internal/progress"
)

// loaderFor picks the document loader from the file extension. Anything
// that is not HCL is read as a JSON envelope.
func loaderFor(name string) config.Loader {
	if strings.EqualFold(filepath.Ext(name), ".hcl") {
		return &hcl.Loader{Filename: filepath.Base(name)}
	}
	return packet.NewLoader()
}

// Compile loads raw, read from a document called name, and returns the
// generated source.
func (a *App) Compile(ctx context.Context, name string, raw []byte) (string, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	model, err := loaderFor(name).Load(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("failed to load '%s': %w", name, err)
	}
	src, err := a.generator.GenerateSource(ctx, model)
	if err != nil {
		return "", fmt.Errorf("failed to generate '%s': %w", name, err)
	}
	return src, nil
}

// CompileFile compiles inPath and writes the result to outPath. The
// configured notebook and upload steps follow a successful write. Nothing is
// written when loading or generation fails.
func (a *App) CompileFile(ctx context.Context, inPath, outPath string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger.With("input", inPath)

	report := func(stage progress.Stage, msg string) {
		a.reporter.Report(ctx, progress.Event{Stage: stage, File: inPath, Message: msg})
	}
	fail := func(err error) error {
		report(progress.StageFailed, err.Error())
		return err
	}

	report(progress.StageLoad, "")
	raw, err := os.ReadFile(inPath)
	if err != nil {
		return fail(fmt.Errorf("failed to read input '%s': %w", inPath, err))
	}
	model, err := loaderFor(inPath).Load(ctx, raw)
	if err != nil {
		return fail(fmt.Errorf("failed to load '%s': %w", inPath, err))
	}
	logger.Debug("Model loaded.", "layers", len(model.Layers))

	report(progress.StageGenerate, "")
	src, err := a.generator.GenerateSource(ctx, model)
	if err != nil {
		return fail(fmt.Errorf("failed to generate '%s': %w", inPath, err))
	}

	report(progress.StageWrite, outPath)
	if err := writeFileAtomic(outPath, []byte(src)); err != nil {
		return fail(fmt.Errorf("failed to write '%s': %w", outPath, err))
	}
	logger.Info("Model source written.", "output", outPath, "class", a.generator.ClassName())

	artifact := outPath
	if a.config.NotebookPath != "" {
		report(progress.StageNotebook, a.config.NotebookPath)
		if err := a.writeNotebook(src); err != nil {
			return fail(err)
		}
		logger.Info("Notebook written.", "notebook", a.config.NotebookPath)
		artifact = a.config.NotebookPath
	}

	if a.config.UploadURL != "" {
		report(progress.StageUpload, artifact)
		if _, err := a.uploader.UploadFile(ctx, artifact, a.config.UploadURL); err != nil {
			return fail(fmt.Errorf("failed to upload '%s': %w", artifact, err))
		}
	}

	report(progress.StageDone, outPath)
	return nil
}

func (a *App) writeNotebook(src string) error {
	var (
		doc []byte
		err error
	)
	if a.config.NotebookSkeleton != "" {
		skeleton, readErr := os.ReadFile(a.config.NotebookSkeleton)
		if readErr != nil {
			return fmt.Errorf("failed to read skeleton notebook '%s': %w", a.config.NotebookSkeleton, readErr)
		}
		doc, err = notebook.Splice(skeleton, src)
	} else {
		doc, err = notebook.Build(src)
	}
	if err != nil {
		return fmt.Errorf("failed to build notebook: %w", err)
	}
	if err := writeFileAtomic(a.config.NotebookPath, doc); err != nil {
		return fmt.Errorf("failed to write notebook '%s': %w", a.config.NotebookPath, err)
	}
	return nil
}

// writeFileAtomic writes data next to path and renames it into place, so
// readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
