package app

import (
	"errors"
	"fmt"

	"github.com/vk/torchgen/internal/codegen"
	"github.com/vk/torchgen/internal/executor"
	"github.com/vk/torchgen/internal/pysrc"
)

// DefaultOutputPath is where a single compiled model is written.
const DefaultOutputPath = "build/PrimaryModel.py"

// DefaultIndentWidth is the number of spaces per indentation level.
const DefaultIndentWidth = 4

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	InputPath  string // model document, or a directory of them
	OutputPath string // output file, or output directory in batch mode

	ClassName   string
	DataRoot    string
	IndentWidth int

	NotebookPath     string
	NotebookSkeleton string
	UploadURL        string
	ProgressURL      string

	ServePort   int
	WorkerCount int // concurrent compiles in batch mode
	LogFormat   string
	LogLevel    string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputPath == "" && cfg.ServePort <= 0 {
		return nil, errors.New("InputPath is a required configuration field unless the compile server is enabled")
	}
	if cfg.ServePort < 0 || cfg.ServePort > 65535 {
		return nil, fmt.Errorf("ServePort %d is out of range", cfg.ServePort)
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath
	}
	if cfg.ClassName == "" {
		cfg.ClassName = codegen.DefaultClassName
	}
	if !pysrc.IsIdentifier(cfg.ClassName) {
		return nil, fmt.Errorf("%w: %q", codegen.ErrInvalidClassName, cfg.ClassName)
	}
	if cfg.DataRoot == "" {
		cfg.DataRoot = codegen.DefaultDataRoot
	}
	if cfg.IndentWidth == 0 {
		cfg.IndentWidth = DefaultIndentWidth
	}
	if cfg.IndentWidth < 0 {
		return nil, fmt.Errorf("IndentWidth must be positive, got %d", cfg.IndentWidth)
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = executor.DefaultWorkerCount
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("WorkerCount must be positive, got %d", cfg.WorkerCount)
	}
	if cfg.NotebookSkeleton != "" && cfg.NotebookPath == "" {
		return nil, errors.New("NotebookSkeleton requires NotebookPath")
	}

	return &cfg, nil
}
