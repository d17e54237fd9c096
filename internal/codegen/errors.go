package codegen

import (
	"errors"
	"fmt"
)

// ErrInvalidClassName is returned when the requested class name is not a
// valid Python identifier.
var ErrInvalidClassName = errors.New("class name is not a valid Python identifier")

// UnsupportedLayerKindError reports a layer whose kind has no handler.
type UnsupportedLayerKindError struct {
	Index int // position in the layer list, 0-based
	Kind  string
}

func (e *UnsupportedLayerKindError) Error() string {
	return fmt.Sprintf("layers[%d] (%s): unsupported layer kind %q", e.Index, FieldName(e.Index+1), e.Kind)
}

// UnsupportedLossKindError reports a loss function kind with no handler.
type UnsupportedLossKindError struct {
	Kind string
}

func (e *UnsupportedLossKindError) Error() string {
	return fmt.Sprintf("unsupported loss function kind %q", e.Kind)
}

// UnsupportedOptimizerKindError reports an optimizer kind with no handler.
type UnsupportedOptimizerKindError struct {
	Kind string
}

func (e *UnsupportedOptimizerKindError) Error() string {
	return fmt.Sprintf("unsupported optimizer kind %q", e.Kind)
}

// InvalidParameterError reports parameters that could not be decoded or
// failed the kind's validation.
type InvalidParameterError struct {
	Section string // "layers", "dataset", "loss_function" or "optimizer"
	Index   int    // layer position; only meaningful for "layers"
	Kind    string
	Err     error
}

func (e *InvalidParameterError) Error() string {
	if e.Section == sectionLayers {
		return fmt.Sprintf("layers[%d] (%s, %s): invalid parameters: %v", e.Index, FieldName(e.Index+1), e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): invalid parameters: %v", e.Section, e.Kind, e.Err)
}

func (e *InvalidParameterError) Unwrap() error { return e.Err }
