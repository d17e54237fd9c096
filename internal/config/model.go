package config

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Model is the network description carried by a model_params envelope.
type Model struct {
	Dataset      *Component // nil when the document declares none
	LossFunction *Component
	Optimizer    *Component
	Layers       []Layer // construction order and forward-pass order
}

// Component is a dataset, loss function or optimizer declaration.
type Component struct {
	Type       string
	Parameters map[string]cty.Value
}

// Layer is one entry of the ordered layer list.
type Layer struct {
	Type       string
	Parameters map[string]cty.Value
}

// ParameterNames returns the parameter keys in sorted order.
func ParameterNames(params map[string]cty.Value) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
