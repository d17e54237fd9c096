package codegen

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/torchgen/internal/config"
	"github.com/vk/torchgen/internal/ctxlog"
	"github.com/vk/torchgen/internal/linetree"
	"github.com/vk/torchgen/internal/params"
	"github.com/vk/torchgen/internal/pysrc"
	"github.com/vk/torchgen/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

const (
	// DefaultClassName is the class emitted when no name is configured.
	DefaultClassName = "PrimaryModel"
	// DefaultDataRoot is where generated dataset fields download to.
	DefaultDataRoot = "build/data"
	// TensorName is the running value threaded through forward.
	TensorName = "curr_tensor"
)

const (
	sectionLayers    = "layers"
	sectionDataset   = "dataset"
	sectionLoss      = "loss_function"
	sectionOptimizer = "optimizer"
)

// Options configures a Generator. Zero fields take their defaults.
type Options struct {
	ClassName string
	DataRoot  string
	Indent    string
}

// Generator turns models into Python source. It holds no per-model state and
// is safe for concurrent use.
type Generator struct {
	className string
	dataRoot  string
	renderer  linetree.Renderer
	registry  *registry.Registry
}

// New creates a Generator over the handlers in reg.
func New(reg *registry.Registry, opts Options) (*Generator, error) {
	if reg == nil {
		return nil, errors.New("codegen: registry is nil")
	}
	if opts.ClassName == "" {
		opts.ClassName = DefaultClassName
	}
	if !pysrc.IsIdentifier(opts.ClassName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidClassName, opts.ClassName)
	}
	if opts.DataRoot == "" {
		opts.DataRoot = DefaultDataRoot
	}
	return &Generator{
		className: opts.ClassName,
		dataRoot:  opts.DataRoot,
		renderer:  linetree.Renderer{Indent: opts.Indent},
		registry:  reg,
	}, nil
}

// ClassName is the name of the generated class.
func (g *Generator) ClassName() string { return g.className }

// boundLayer is a slot resolved against the registry. handler is nil when the
// kind is unsupported or its parameters were rejected.
type boundLayer struct {
	Slot
	handler *registry.LayerHandler
	input   any
}

// GenerateSource renders the complete model file.
func (g *Generator) GenerateSource(ctx context.Context, model *config.Model) (string, error) {
	file, err := g.Generate(ctx, model)
	if err != nil {
		return "", err
	}
	return g.renderer.Render(file), nil
}

// Generate builds the line tree of the complete model file: the imports, the
// class header and both method fragments. Every unsupported kind and every
// invalid parameter set is reported in the joined error.
func (g *Generator) Generate(ctx context.Context, model *config.Model) (linetree.Block, error) {
	if model == nil {
		return nil, errors.New("codegen: model is nil")
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Generating model class.", "class", g.className, "layers", len(model.Layers))

	layers, layerErrs := g.bindSlots(ctx, AssignSlots(model.Layers))
	initBlock, initErr := g.initFragment(ctx, model, layers, layerErrs)
	if initErr != nil {
		return nil, initErr
	}
	forward := g.forwardFragment(layers)

	var class linetree.Block
	class = append(class, initBlock...)
	class = append(class, forward...)

	file := linetree.Lines(
		"import torch",
		"import torchvision",
		fmt.Sprintf("class %s(torch.nn.Module):", g.className),
	)
	file.Nest(class)

	logger.Debug("Generated model class.", "class", g.className, "lines", file.CountLines())
	return file, nil
}

// GenerateInit builds the __init__ method: its header and a nested body
// holding the superclass call, the dataset fields, the loss function, one
// field per layer that allocates one and finally the optimizer. slots must
// come from AssignSlots(model.Layers).
func (g *Generator) GenerateInit(ctx context.Context, model *config.Model, slots []Slot) (linetree.Block, error) {
	if model == nil {
		return nil, errors.New("codegen: model is nil")
	}
	layers, layerErrs := g.bindSlots(ctx, slots)
	return g.initFragment(ctx, model, layers, layerErrs)
}

// GenerateForward builds the forward method: its header and a nested body
// with one statement per layer followed by the return of the running value.
func (g *Generator) GenerateForward(ctx context.Context, slots []Slot) (linetree.Block, error) {
	layers, layerErrs := g.bindSlots(ctx, slots)
	if err := errors.Join(layerErrs...); err != nil {
		return nil, err
	}
	return g.forwardFragment(layers), nil
}

func (g *Generator) bindSlots(ctx context.Context, slots []Slot) ([]boundLayer, []error) {
	logger := ctxlog.FromContext(ctx)

	bound := make([]boundLayer, len(slots))
	var errs []error
	for i, slot := range slots {
		bound[i].Slot = slot
		kind := registry.NormalizeKind(slot.Layer.Type)

		h, ok := g.registry.Layer(kind)
		if !ok {
			errs = append(errs, &UnsupportedLayerKindError{Index: slot.ID - 1, Kind: slot.Layer.Type})
			continue
		}
		input, err := decodeInput(ctx, h.NewInput, h.Validate, slot.Layer.Parameters)
		if err != nil {
			errs = append(errs, &InvalidParameterError{Section: sectionLayers, Index: slot.ID - 1, Kind: kind, Err: err})
			continue
		}
		bound[i].handler = h
		bound[i].input = input
		logger.Debug("Bound layer.", "field", slot.Field, "kind", kind)
	}
	return bound, errs
}

func (g *Generator) initFragment(ctx context.Context, model *config.Model, layers []boundLayer, layerErrs []error) (linetree.Block, error) {
	scope := g.scope("")
	var errs []error

	body := linetree.Lines(fmt.Sprintf("super(%s, self).__init__()", g.className))

	if model.Dataset != nil {
		kind := registry.NormalizeKind(model.Dataset.Type)
		if h, ok := g.registry.Dataset(kind); ok {
			lines, err := componentLines(ctx, sectionDataset, kind, h, scope, model.Dataset.Parameters)
			if err != nil {
				errs = append(errs, err)
			}
			body.Append(lines...)
		} else {
			ctxlog.FromContext(ctx).Warn("Unknown dataset, no dataset fields will be generated.",
				"dataset", model.Dataset.Type, "supported", g.registry.SupportedDatasets())
		}
	}

	if model.LossFunction != nil {
		kind := registry.NormalizeKind(model.LossFunction.Type)
		if h, ok := g.registry.Loss(kind); ok {
			lines, err := componentLines(ctx, sectionLoss, kind, h, scope, model.LossFunction.Parameters)
			if err != nil {
				errs = append(errs, err)
			}
			body.Append(lines...)
		} else {
			errs = append(errs, &UnsupportedLossKindError{Kind: model.LossFunction.Type})
		}
	}

	errs = append(errs, layerErrs...)
	for _, l := range layers {
		if l.handler == nil || l.handler.Init == nil {
			continue
		}
		body.Append(l.handler.Init(g.scope(l.Field), l.input)...)
	}

	if model.Optimizer != nil {
		kind := registry.NormalizeKind(model.Optimizer.Type)
		if h, ok := g.registry.Optimizer(kind); ok {
			lines, err := componentLines(ctx, sectionOptimizer, kind, h, scope, model.Optimizer.Parameters)
			if err != nil {
				errs = append(errs, err)
			}
			body.Append(lines...)
		} else {
			errs = append(errs, &UnsupportedOptimizerKindError{Kind: model.Optimizer.Type})
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	method := linetree.Lines("def __init__(self):")
	method.Nest(body)
	return method, nil
}

func (g *Generator) forwardFragment(layers []boundLayer) linetree.Block {
	body := make(linetree.Block, 0, len(layers)+1)
	for _, l := range layers {
		if l.handler == nil {
			continue
		}
		s := g.scope(l.Field)
		if l.handler.Forward != nil {
			body.Append(l.handler.Forward(s, l.input))
			continue
		}
		body.Append(fmt.Sprintf("%[1]s = self.%[2]s(%[1]s)", s.Tensor, s.Field))
	}
	body.Append("return " + TensorName)

	forward := linetree.Lines(fmt.Sprintf("def forward(self, %s):", TensorName))
	forward.Nest(body)
	return forward
}

func (g *Generator) scope(field string) registry.Scope {
	return registry.Scope{
		ClassName: g.className,
		DataRoot:  g.dataRoot,
		Field:     field,
		Tensor:    TensorName,
	}
}

func componentLines(ctx context.Context, section, kind string, h *registry.ComponentHandler, s registry.Scope, raw map[string]cty.Value) ([]string, error) {
	input, err := decodeInput(ctx, h.NewInput, h.Validate, raw)
	if err != nil {
		return nil, &InvalidParameterError{Section: section, Kind: kind, Err: err}
	}
	ctxlog.FromContext(ctx).Debug("Generating component.", "section", section, "kind", kind)
	return h.Init(s, input), nil
}

// decodeInput decodes raw into a fresh input struct and validates it.
// Parameters nothing claims are logged and otherwise ignored.
func decodeInput(ctx context.Context, newInput func() any, validate func(any) error, raw map[string]cty.Value) (any, error) {
	logger := ctxlog.FromContext(ctx)
	if newInput == nil {
		if len(raw) > 0 {
			logger.Warn("Ignoring parameters of a kind that takes none.", "params", config.ParameterNames(raw))
		}
		return nil, nil
	}

	input := newInput()
	unused, err := params.Decode(ctx, raw, input)
	if err != nil {
		return nil, err
	}
	if len(unused) > 0 {
		logger.Warn("Ignoring unknown parameters.", "params", unused)
	}
	if validate != nil {
		if err := validate(input); err != nil {
			return nil, err
		}
	}
	return input, nil
}
