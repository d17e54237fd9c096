// Package datasets generates the train_dataset and test_dataset fields read
// by the training harness.
package datasets

import (
	"fmt"

	"github.com/vk/torchgen/internal/pysrc"
	"github.com/vk/torchgen/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// torchvisionClasses maps dataset kinds to their torchvision.datasets class.
var torchvisionClasses = map[string]string{
	"mnist":        "MNIST",
	"fashionmnist": "FashionMNIST",
	"cifar10":      "CIFAR10",
}

// Register registers every dataset kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	for kind, class := range torchvisionClasses {
		r.RegisterDataset(kind, &registry.ComponentHandler{Init: torchvisionSplits(class)})
	}
}

func torchvisionSplits(class string) func(registry.Scope, any) []string {
	return func(s registry.Scope, _ any) []string {
		root := pysrc.String(s.DataRoot)
		return []string{
			fmt.Sprintf("self.train_dataset = torchvision.datasets.%s(%s, train=True, download=True, transform=torchvision.transforms.ToTensor())", class, root),
			fmt.Sprintf("self.test_dataset = torchvision.datasets.%s(%s, train=False, download=True, transform=torchvision.transforms.ToTensor())", class, root),
		}
	}
}
