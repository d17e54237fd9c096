package testutil

import (
	"fmt"

	"github.com/vk/torchgen/internal/pysrc"
	"github.com/vk/torchgen/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers a single layer or loss kind.
type SimpleModule struct {
	LayerKind string
	Layer     *registry.LayerHandler

	LossKind string
	Loss     *registry.ComponentHandler
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.LayerKind != "" && m.Layer != nil {
		r.RegisterLayer(m.LayerKind, m.Layer)
	}
	if m.LossKind != "" && m.Loss != nil {
		r.RegisterLoss(m.LossKind, m.Loss)
	}
}

// DropoutInput is the parameter struct of the DropoutModule layer.
type DropoutInput struct {
	P float64 `param:"p,optional"`
}

// DropoutModule registers a "dropout" layer kind, which the binary does not
// ship, to exercise registering kinds from outside the module packages.
func DropoutModule() *SimpleModule {
	return &SimpleModule{
		LayerKind: "dropout",
		Layer: &registry.LayerHandler{
			NewInput: func() any { return &DropoutInput{P: 0.5} },
			Init: func(s registry.Scope, input any) []string {
				in := input.(*DropoutInput)
				return []string{fmt.Sprintf("self.%s = torch.nn.Dropout(p=%s)", s.Field, pysrc.Float(in.P))}
			},
		},
	}
}
