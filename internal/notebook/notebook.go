// Package notebook places generated model source into a Jupyter notebook
// that Colab can open.
package notebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// ModelCellID is the metadata id of the generated model cell.
	ModelCellID = "123456781234"
	// ModelCellIndex is the position of the model cell in a skeleton notebook.
	ModelCellIndex = 2
)

// ErrShortSkeleton is returned when a skeleton has no cell at ModelCellIndex.
var ErrShortSkeleton = errors.New("skeleton notebook has no model cell")

// Cell is a notebook code cell.
type Cell struct {
	CellType       string         `json:"cell_type"`
	ExecutionCount int            `json:"execution_count"`
	Metadata       map[string]any `json:"metadata"`
	Outputs        []any          `json:"outputs"`
	Source         []string       `json:"source"`
}

// Notebook is the document written when no skeleton is supplied.
type Notebook struct {
	Cells         []Cell   `json:"cells"`
	Metadata      Metadata `json:"metadata"`
	NBFormat      int      `json:"nbformat"`
	NBFormatMinor int      `json:"nbformat_minor"`
}

// Metadata is the notebook-level metadata Colab reads.
type Metadata struct {
	Accelerator  string       `json:"accelerator"`
	Colab        Colab        `json:"colab"`
	KernelSpec   KernelSpec   `json:"kernelspec"`
	LanguageInfo LanguageInfo `json:"language_info"`
}

type Colab struct {
	GPUType    string `json:"gpuType"`
	Provenance []any  `json:"provenance"`
}

type KernelSpec struct {
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
}

type LanguageInfo struct {
	CodemirrorMode    CodemirrorMode `json:"codemirror_mode"`
	FileExtension     string         `json:"file_extension"`
	Mimetype          string         `json:"mimetype"`
	Name              string         `json:"name"`
	NBConvertExporter string         `json:"nbconvert_exporter"`
	PygmentsLexer     string         `json:"pygments_lexer"`
	Version           string         `json:"version"`
}

type CodemirrorMode struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// SourceLines splits src into lines that keep their trailing newline, the
// shape notebook cells store source in.
func SourceLines(src string) []string {
	lines := strings.SplitAfter(src, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if lines == nil {
		lines = []string{}
	}
	return lines
}

// ModelCell wraps src in the model code cell.
func ModelCell(src string) Cell {
	return Cell{
		CellType: "code",
		Metadata: map[string]any{"id": ModelCellID},
		Outputs:  []any{},
		Source:   SourceLines(src),
	}
}

// Build returns a fresh Colab notebook holding only the model cell.
func Build(src string) ([]byte, error) {
	nb := Notebook{
		Cells: []Cell{ModelCell(src)},
		Metadata: Metadata{
			Accelerator: "GPU",
			Colab:       Colab{GPUType: "T4", Provenance: []any{}},
			KernelSpec:  KernelSpec{DisplayName: "Python 3", Name: "python3"},
			LanguageInfo: LanguageInfo{
				CodemirrorMode:    CodemirrorMode{Name: "ipython", Version: 3},
				FileExtension:     ".py",
				Mimetype:          "text/x-python",
				Name:              "python",
				NBConvertExporter: "python",
				PygmentsLexer:     "ipython3",
				Version:           "3.12.1",
			},
		},
		NBFormat:      4,
		NBFormatMinor: 0,
	}
	return json.Marshal(nb)
}

// Splice replaces the model cell of skeleton with src. Every other cell and
// top-level key of the skeleton is carried over untouched.
func Splice(skeleton []byte, src string) ([]byte, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(skeleton, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse skeleton notebook: %w", err)
	}

	var cells []json.RawMessage
	if raw, ok := doc["cells"]; ok {
		if err := json.Unmarshal(raw, &cells); err != nil {
			return nil, fmt.Errorf("failed to parse skeleton cells: %w", err)
		}
	}
	if len(cells) <= ModelCellIndex {
		return nil, fmt.Errorf("%w: found %d cells, need at least %d", ErrShortSkeleton, len(cells), ModelCellIndex+1)
	}

	cell, err := json.Marshal(ModelCell(src))
	if err != nil {
		return nil, err
	}
	cells[ModelCellIndex] = cell

	if doc["cells"], err = json.Marshal(cells); err != nil {
		return nil, err
	}
	doc["nbformat"] = json.RawMessage("4")
	doc["nbformat_minor"] = json.RawMessage("0")
	return json.Marshal(doc)
}
