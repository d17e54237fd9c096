package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/torchgen/internal/app"
	"github.com/vk/torchgen/internal/codegen"
	"github.com/vk/torchgen/internal/executor"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("torchgen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
torchgen - Compiles model_params documents into PyTorch model classes.

Usage:
  torchgen [options] INPUT [OUTPUT]
  torchgen -serve-port PORT [options]

Arguments:
  INPUT
    Path to a .json or .hcl model document, or a directory of them.
  OUTPUT
    Generated Python file (directory when INPUT is a directory).

Options:
`)
		flagSet.PrintDefaults()
	}

	inputFlag := flagSet.String("input", "", "Path to the model document or directory.")
	iFlag := flagSet.String("i", "", "Path to the model document or directory (shorthand).")
	outputFlag := flagSet.String("output", "", fmt.Sprintf("Output file or directory. (default %q)", app.DefaultOutputPath))
	oFlag := flagSet.String("o", "", "Output file or directory (shorthand).")
	classNameFlag := flagSet.String("class-name", codegen.DefaultClassName, "Name of the generated class.")
	dataRootFlag := flagSet.String("data-root", codegen.DefaultDataRoot, "Dataset download directory used by the generated code.")
	indentFlag := flagSet.Int("indent", app.DefaultIndentWidth, "Spaces per indentation level in the generated code.")
	notebookFlag := flagSet.String("notebook", "", "Also write a Colab notebook holding the model to this path.")
	skeletonFlag := flagSet.String("notebook-skeleton", "", "Skeleton notebook whose model cell is replaced.")
	uploadFlag := flagSet.String("upload-url", "", "Pre-signed URL the artifact is PUT to.")
	progressFlag := flagSet.String("progress-url", "", "socket.io endpoint that receives compile status events.")
	servePortFlag := flagSet.Int("serve-port", 0, "Port for the HTTP compile server. 0 runs a one-shot compile.")
	workersFlag := flagSet.Int("workers", executor.DefaultWorkerCount, "Number of concurrent compiles when INPUT is a directory.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	positional := flagSet.Args()
	input := firstNonEmpty(*inputFlag, *iFlag)
	if input == "" && len(positional) > 0 {
		input, positional = positional[0], positional[1:]
	}
	outputPath := firstNonEmpty(*outputFlag, *oFlag)
	if outputPath == "" && len(positional) > 0 {
		outputPath, positional = positional[0], positional[1:]
	}
	if len(positional) > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(positional, " "))}
	}
	slog.Debug("Paths determined.", "input", input, "output", outputPath)

	if input == "" && *servePortFlag == 0 {
		slog.Debug("No input provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if *workersFlag <= 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be a positive number"}
	}
	if *indentFlag <= 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid indent: must be a positive number of spaces"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		InputPath:        input,
		OutputPath:       outputPath,
		ClassName:        *classNameFlag,
		DataRoot:         *dataRootFlag,
		IndentWidth:      *indentFlag,
		NotebookPath:     *notebookFlag,
		NotebookSkeleton: *skeletonFlag,
		UploadURL:        *uploadFlag,
		ProgressURL:      *progressFlag,
		ServePort:        *servePortFlag,
		WorkerCount:      *workersFlag,
		LogFormat:        logFormat,
		LogLevel:         logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
