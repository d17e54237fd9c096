// Package optimizers generates the optimizer field of the model. The
// optimizer is bound to every trainable parameter of the enclosing module,
// so its statement must come after all layer fields exist.
package optimizers

import (
	"fmt"

	"github.com/vk/torchgen/internal/pysrc"
	"github.com/vk/torchgen/internal/registry"
)

// DefaultLearningRate is used when a document declares none.
const DefaultLearningRate = 0.001

// Module implements the registry.Module interface for this package.
type Module struct{}

// AdamInput defines the Adam hyperparameters.
type AdamInput struct {
	LearningRate float64 `param:"learning_rate|lr,optional"`
}

// SGDInput defines the SGD hyperparameters.
type SGDInput struct {
	LearningRate float64 `param:"learning_rate|lr,optional"`
	Momentum     float64 `param:"momentum,optional"`
}

// Register registers every optimizer kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterOptimizer("adam", &registry.ComponentHandler{
		NewInput: func() any { return &AdamInput{LearningRate: DefaultLearningRate} },
		Validate: func(input any) error { return checkRate(input.(*AdamInput).LearningRate) },
		Init:     InitAdam,
	})
	r.RegisterOptimizer("sgd", &registry.ComponentHandler{
		NewInput: func() any { return &SGDInput{LearningRate: DefaultLearningRate} },
		Validate: ValidateSGD,
		Init:     InitSGD,
	})
}

// InitAdam constructs torch.optim.Adam over the model parameters.
func InitAdam(_ registry.Scope, input any) []string {
	in := input.(*AdamInput)
	return []string{fmt.Sprintf("self.optimizer = torch.optim.Adam(self.parameters(), lr=%s)", pysrc.Float(in.LearningRate))}
}

// InitSGD constructs torch.optim.SGD over the model parameters.
func InitSGD(_ registry.Scope, input any) []string {
	in := input.(*SGDInput)
	return []string{fmt.Sprintf("self.optimizer = torch.optim.SGD(self.parameters(), lr=%s, momentum=%s)",
		pysrc.Float(in.LearningRate), pysrc.Float(in.Momentum))}
}

// ValidateSGD checks the learning rate and momentum ranges.
func ValidateSGD(input any) error {
	in := input.(*SGDInput)
	if err := checkRate(in.LearningRate); err != nil {
		return err
	}
	if in.Momentum < 0 {
		return fmt.Errorf("momentum must not be negative, got %s", pysrc.Float(in.Momentum))
	}
	return nil
}

func checkRate(lr float64) error {
	if lr <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %s", pysrc.Float(lr))
	}
	return nil
}
