package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Module is the interface that all kind packages implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Scope is what a handler knows about the code it is generating into.
type Scope struct {
	ClassName string // generated class name
	DataRoot  string // dataset storage path used by dataset handlers
	Field     string // layer field name ("layer3"); empty for components
	Tensor    string // name of the running tensor variable in forward
}

// LayerHandler generates the init-time and forward-pass code of one layer kind.
type LayerHandler struct {
	// NewInput returns a pointer to the kind's parameter struct with its
	// defaults filled in. Nil for kinds without parameters.
	NewInput func() any
	// Validate checks the decoded input. Optional.
	Validate func(input any) error
	// Init returns the constructor statements. Nil means the kind allocates
	// no field.
	Init func(s Scope, input any) []string
	// Forward returns the forward-pass statement. Nil means the running value
	// is passed through the layer's field.
	Forward func(s Scope, input any) string
}

// ComponentHandler generates the constructor statements of a dataset, loss
// function or optimizer kind.
type ComponentHandler struct {
	NewInput func() any
	Validate func(input any) error
	Init     func(s Scope, input any) []string
}

// Registry holds all registered handlers for a single generator.
type Registry struct {
	Layers     map[string]*LayerHandler
	Losses     map[string]*ComponentHandler
	Optimizers map[string]*ComponentHandler
	Datasets   map[string]*ComponentHandler
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		Layers:     make(map[string]*LayerHandler),
		Losses:     make(map[string]*ComponentHandler),
		Optimizers: make(map[string]*ComponentHandler),
		Datasets:   make(map[string]*ComponentHandler),
	}
}

// NewWithModules creates a registry populated by the given modules.
func NewWithModules(modules ...Module) *Registry {
	r := New()
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// NormalizeKind is the canonical form of a kind tag used for lookups.
func NormalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

// RegisterLayer registers the handler for a layer kind.
func (r *Registry) RegisterLayer(kind string, h *LayerHandler) {
	kind = NormalizeKind(kind)
	if _, exists := r.Layers[kind]; exists {
		panic(fmt.Sprintf("layer handler for kind '%s' already registered", kind))
	}
	slog.Debug("Registering layer handler.", "kind", kind)
	r.Layers[kind] = h
}

// RegisterLoss registers the handler for a loss function kind.
func (r *Registry) RegisterLoss(kind string, h *ComponentHandler) {
	registerComponent(r.Losses, "loss", kind, h)
}

// RegisterOptimizer registers the handler for an optimizer kind.
func (r *Registry) RegisterOptimizer(kind string, h *ComponentHandler) {
	registerComponent(r.Optimizers, "optimizer", kind, h)
}

// RegisterDataset registers the handler for a dataset kind.
func (r *Registry) RegisterDataset(kind string, h *ComponentHandler) {
	registerComponent(r.Datasets, "dataset", kind, h)
}

func registerComponent(table map[string]*ComponentHandler, section, kind string, h *ComponentHandler) {
	kind = NormalizeKind(kind)
	if _, exists := table[kind]; exists {
		panic(fmt.Sprintf("%s handler for kind '%s' already registered", section, kind))
	}
	slog.Debug("Registering component handler.", "section", section, "kind", kind)
	table[kind] = h
}

// Layer looks up the handler for a layer kind.
func (r *Registry) Layer(kind string) (*LayerHandler, bool) {
	h, ok := r.Layers[NormalizeKind(kind)]
	return h, ok
}

// Loss looks up the handler for a loss function kind.
func (r *Registry) Loss(kind string) (*ComponentHandler, bool) {
	h, ok := r.Losses[NormalizeKind(kind)]
	return h, ok
}

// Optimizer looks up the handler for an optimizer kind.
func (r *Registry) Optimizer(kind string) (*ComponentHandler, bool) {
	h, ok := r.Optimizers[NormalizeKind(kind)]
	return h, ok
}

// Dataset looks up the handler for a dataset kind.
func (r *Registry) Dataset(kind string) (*ComponentHandler, bool) {
	h, ok := r.Datasets[NormalizeKind(kind)]
	return h, ok
}

// SupportedLayers returns the registered layer kinds in sorted order.
func (r *Registry) SupportedLayers() []string {
	return sortedKeys(r.Layers)
}

// SupportedLosses returns the registered loss kinds in sorted order.
func (r *Registry) SupportedLosses() []string {
	return sortedKeys(r.Losses)
}

// SupportedOptimizers returns the registered optimizer kinds in sorted order.
func (r *Registry) SupportedOptimizers() []string {
	return sortedKeys(r.Optimizers)
}

// SupportedDatasets returns the registered dataset kinds in sorted order.
func (r *Registry) SupportedDatasets() []string {
	return sortedKeys(r.Datasets)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
