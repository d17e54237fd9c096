// Package layers generates the constructor and forward-pass statements of the
// supported layer kinds.
package layers

import (
	"fmt"

	"github.com/vk/torchgen/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every layer kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterLayer("linear", &registry.LayerHandler{
		NewInput: func() any { return new(LinearInput) },
		Validate: ValidateLinear,
		Init:     InitLinear,
	})
	r.RegisterLayer("conv2d", &registry.LayerHandler{
		NewInput: func() any { return &Conv2dInput{Stride: 1, Padding: 0} },
		Validate: ValidateConv2d,
		Init:     InitConv2d,
	})

	for kind, fn := range activations {
		r.RegisterLayer(kind, &registry.LayerHandler{Init: bindFunction(fn)})
	}
	r.RegisterLayer("log_softmax", &registry.LayerHandler{
		Init:    bindFunction("torch.nn.functional.log_softmax"),
		Forward: ForwardLogSoftmax,
	})

	r.RegisterLayer("view", &registry.LayerHandler{
		NewInput: func() any { return new(ViewInput) },
		Validate: ValidateView,
		Forward:  ForwardView,
	})

	maxPool := &registry.LayerHandler{
		NewInput: func() any { return &MaxPool2dInput{KernelSize: 2} },
		Validate: ValidateMaxPool2d,
		Forward:  ForwardMaxPool2d,
	}
	r.RegisterLayer("maxpool2d", maxPool)
	r.RegisterLayer("max_pool2d", maxPool)
}

func positive(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, v)
	}
	return nil
}
