package layers

import (
	"fmt"

	"github.com/vk/torchgen/internal/registry"
)

// activations maps the stateless activation kinds to the function the layer
// field is bound to. The field holds a reference; nothing is instantiated.
var activations = map[string]string{
	"relu":    "torch.nn.functional.relu",
	"sigmoid": "torch.sigmoid",
	"tanh":    "torch.tanh",
}

func bindFunction(fn string) func(registry.Scope, any) []string {
	return func(s registry.Scope, _ any) []string {
		return []string{fmt.Sprintf("self.%s = %s", s.Field, fn)}
	}
}

// ForwardLogSoftmax calls the bound log_softmax over the last dimension.
func ForwardLogSoftmax(s registry.Scope, _ any) string {
	return fmt.Sprintf("%[1]s = self.%[2]s(%[1]s, -1)", s.Tensor, s.Field)
}
