package app

import (
	"github.com/vk/torchgen/internal/registry"
	"github.com/vk/torchgen/modules/datasets"
	"github.com/vk/torchgen/modules/layers"
	"github.com/vk/torchgen/modules/losses"
	"github.com/vk/torchgen/modules/optimizers"
)

// coreModules is the definitive list of all kind modules that are compiled
// into the torchgen binary.
var coreModules = []registry.Module{
	&layers.Module{},
	&losses.Module{},
	&optimizers.Module{},
	&datasets.Module{},
}

// CoreModules returns a copy of the kind modules compiled into the binary,
// for callers that want to extend the set.
func CoreModules() []registry.Module {
	return append([]registry.Module(nil), coreModules...)
}
