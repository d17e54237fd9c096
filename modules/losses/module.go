// Package losses generates the loss_function field of the model.
package losses

import (
	"fmt"

	"github.com/vk/torchgen/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// lossClasses maps loss kinds to their torch.nn class.
var lossClasses = map[string]string{
	"crossentropyloss": "CrossEntropyLoss",
	"nllloss":          "NLLLoss",
	"mseloss":          "MSELoss",
}

// Register registers every loss kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	for kind, class := range lossClasses {
		r.RegisterLoss(kind, &registry.ComponentHandler{Init: construct(class)})
	}
}

func construct(class string) func(registry.Scope, any) []string {
	return func(registry.Scope, any) []string {
		return []string{fmt.Sprintf("self.loss_function = torch.nn.%s()", class)}
	}
}
