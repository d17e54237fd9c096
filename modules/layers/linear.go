package layers

import (
	"errors"
	"fmt"

	"github.com/vk/torchgen/internal/registry"
)

// LinearInput defines the parameters of a fully connected layer.
type LinearInput struct {
	InShape  int `param:"in_shape"`
	OutShape int `param:"out_shape"`
}

// ValidateLinear rejects non-positive feature counts.
func ValidateLinear(input any) error {
	in := input.(*LinearInput)
	return errors.Join(positive("in_shape", in.InShape), positive("out_shape", in.OutShape))
}

// InitLinear constructs a torch.nn.Linear sub-module.
func InitLinear(s registry.Scope, input any) []string {
	in := input.(*LinearInput)
	return []string{fmt.Sprintf("self.%s = torch.nn.Linear(%d, %d)", s.Field, in.InShape, in.OutShape)}
}
