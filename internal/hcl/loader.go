package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/torchgen/internal/config"
	"github.com/vk/torchgen/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	// Filename is reported in diagnostics. Defaults to "model.hcl".
	Filename string
}

// NewLoader creates a new HCL envelope loader.
func NewLoader() *Loader {
	return &Loader{Filename: "model.hcl"}
}

// Load parses raw as HCL and returns the model it carries.
func (l *Loader) Load(ctx context.Context, raw []byte) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "file", l.Filename, "bytes", len(raw))

	filename := l.Filename
	if filename == "" {
		filename = "model.hcl"
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(raw, filename)
	if diags.HasErrors() {
		return nil, &config.MalformedDocumentError{Err: fmt.Errorf("failed to parse HCL: %w", diags)}
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, &config.MalformedDocumentError{Err: fmt.Errorf("failed to decode HCL: %w", diags)}
	}

	if err := checkPacketType(root.PacketType); err != nil {
		return nil, err
	}
	if root.Model == nil {
		return nil, &config.MissingFieldError{Field: "model"}
	}
	// A layer block is the only way to declare model.layers in HCL.
	if len(root.Model.Layers) == 0 {
		return nil, &config.MissingFieldError{Field: "model.layers"}
	}

	model := &config.Model{}
	var err error
	if model.Dataset, err = translateComponent(pick(root.Model.Dataset, root.Dataset)); err != nil {
		return nil, err
	}
	if model.LossFunction, err = translateComponent(pick(root.Model.LossFunction, root.LossFunction)); err != nil {
		return nil, err
	}
	if model.Optimizer, err = translateComponent(pick(root.Model.Optimizer, root.Optimizer)); err != nil {
		return nil, err
	}

	for i, lb := range root.Model.Layers {
		params, err := bodyParameters(lb.Body)
		if err != nil {
			return nil, &config.MalformedDocumentError{Err: fmt.Errorf("layer %d (%s): %w", i, lb.Type, err)}
		}
		model.Layers = append(model.Layers, config.Layer{Type: lb.Type, Parameters: params})
	}

	logger.Debug("HCL loading complete.", "layers", len(model.Layers))
	return model, nil
}

func checkPacketType(expr hcl.Expression) error {
	if expr == nil {
		return &config.MissingFieldError{Field: "packet_type"}
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return &config.MalformedDocumentError{Err: diags}
	}
	if val.IsNull() {
		return &config.MissingFieldError{Field: "packet_type"}
	}
	if !val.Type().Equals(cty.String) {
		return &config.UnrecognizedPacketError{PacketType: val.Type().FriendlyName()}
	}
	if val.AsString() != config.PacketTypeModelParams {
		return &config.UnrecognizedPacketError{PacketType: val.AsString()}
	}
	return nil
}

func pick(inModel, atRoot *componentBlock) *componentBlock {
	if inModel != nil {
		return inModel
	}
	return atRoot
}

func translateComponent(b *componentBlock) (*config.Component, error) {
	if b == nil {
		return nil, nil
	}
	params, err := bodyParameters(b.Body)
	if err != nil {
		return nil, &config.MalformedDocumentError{Err: fmt.Errorf("%s: %w", b.Type, err)}
	}
	return &config.Component{Type: b.Type, Parameters: params}, nil
}

// bodyParameters evaluates every attribute of a block body. A "parameters"
// object attribute is flattened into the result so documents converted from
// the JSON shape keep working.
func bodyParameters(body hcl.Body) (map[string]cty.Value, error) {
	params := make(map[string]cty.Value)
	if body == nil {
		return params, nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		if val.IsNull() {
			continue
		}
		if name == "parameters" && (val.Type().IsObjectType() || val.Type().IsMapType()) {
			for k, v := range val.AsValueMap() {
				if !v.IsNull() {
					params[k] = v
				}
			}
			continue
		}
		params[name] = val
	}
	return params, nil
}
