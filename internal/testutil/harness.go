package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/torchgen/internal/app"
	"github.com/vk/torchgen/internal/progress"
	"github.com/vk/torchgen/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	Dir       string             // temporary root the files were written to
	Config    *app.Config        // configuration the app ran with
	Progress  *progress.Recorder // every compile status event
}

// Path resolves a path relative to the harness root.
func (r *HarnessResult) Path(rel string) string {
	return filepath.Join(r.Dir, rel)
}

// ReadFile returns the content of a file under the harness root.
func (r *HarnessResult) ReadFile(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(r.Path(rel))
	require.NoError(t, err)
	return string(data)
}

// Options adjusts a harness run.
type Options struct {
	// Input is the input path relative to the root. Defaults to "model.json".
	Input string
	// Output is the output path relative to the root. Defaults to
	// "build/PrimaryModel.py".
	Output string
	// Configure edits the app configuration before the app is created. root
	// is the temporary directory the files were written to.
	Configure func(cfg *app.Config, root string)
	// Modules replaces the kinds compiled into the binary.
	Modules []registry.Module
}

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, opts)
}

// RunIntegrationTestWithContext writes files into a temporary root, runs
// the app against them and captures its logs and progress events.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	if opts.Input == "" {
		opts.Input = "model.json"
	}
	if opts.Output == "" {
		opts.Output = app.DefaultOutputPath
	}

	cfg := app.Config{
		InputPath:  filepath.Join(tmpDir, opts.Input),
		OutputPath: filepath.Join(tmpDir, opts.Output),
		LogLevel:   "debug",
		LogFormat:  "text",
	}
	if opts.Configure != nil {
		opts.Configure(&cfg, tmpDir)
	}

	logBuffer := &SafeBuffer{}
	recorder := &progress.Recorder{}
	result := &HarnessResult{Dir: tmpDir, Progress: recorder}

	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		result.Err = err
		return result
	}
	result.Config = appConfig

	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("TORCHGEN_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		result.App, result.Err = app.NewApp(logBuffer, appConfig, opts.Modules...)
	}()

	if panicErr != nil {
		result.LogOutput = logBuffer.String()
		result.Err = fmt.Errorf("application startup panicked | %v", panicErr)
		return result
	}
	if result.Err != nil {
		result.LogOutput = logBuffer.String()
		return result
	}

	result.App.SetReporter(recorder)
	result.Err = result.App.Run(ctx)

	if os.Getenv("TORCHGEN_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}
	result.LogOutput = logBuffer.String()
	return result
}
