package packet

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/torchgen/internal/config"
	"github.com/vk/torchgen/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Loader is the JSON implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new JSON envelope loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses raw as a JSON envelope and returns the model it carries.
func (l *Loader) Load(ctx context.Context, raw []byte) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("JSON loader started.", "bytes", len(raw))

	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return nil, &config.MalformedDocumentError{Err: err}
	}
	if !ty.IsObjectType() {
		return nil, &config.MalformedDocumentError{Err: fmt.Errorf("top level must be an object, got %s", ty.FriendlyName())}
	}
	envelope, err := ctyjson.Unmarshal(raw, ty)
	if err != nil {
		return nil, &config.MalformedDocumentError{Err: err}
	}

	packetType, ok := attr(envelope, "packet_type")
	if !ok {
		return nil, &config.MissingFieldError{Field: "packet_type"}
	}
	if !packetType.Type().Equals(cty.String) || packetType.AsString() != config.PacketTypeModelParams {
		return nil, &config.UnrecognizedPacketError{PacketType: describe(packetType)}
	}

	modelVal, ok := attr(envelope, "model")
	if !ok {
		return nil, &config.MissingFieldError{Field: "model"}
	}
	if !modelVal.Type().IsObjectType() {
		return nil, &config.MalformedDocumentError{Err: errors.New("model must be an object")}
	}

	model, err := translateModel(envelope, modelVal)
	if err != nil {
		return nil, err
	}

	logger.Debug("JSON loading complete.",
		"layers", len(model.Layers),
		"has_dataset", model.Dataset != nil,
		"has_loss_function", model.LossFunction != nil,
		"has_optimizer", model.Optimizer != nil,
	)
	return model, nil
}

func translateModel(envelope, modelVal cty.Value) (*config.Model, error) {
	model := &config.Model{}

	var err error
	if model.Dataset, err = section(envelope, modelVal, "dataset"); err != nil {
		return nil, err
	}
	if model.LossFunction, err = section(envelope, modelVal, "loss_function"); err != nil {
		return nil, err
	}
	if model.Optimizer, err = section(envelope, modelVal, "optimizer"); err != nil {
		return nil, err
	}

	layersVal, ok := attr(modelVal, "layers")
	if !ok {
		return nil, &config.MissingFieldError{Field: "model.layers"}
	}
	if !layersVal.Type().IsTupleType() && !layersVal.Type().IsListType() {
		return nil, &config.MalformedDocumentError{Err: fmt.Errorf("model.layers must be an array, got %s", layersVal.Type().FriendlyName())}
	}

	for it := layersVal.ElementIterator(); it.Next(); {
		_, el := it.Element()
		path := fmt.Sprintf("model.layers[%d]", len(model.Layers))
		layer, err := translateLayer(el, path)
		if err != nil {
			return nil, err
		}
		model.Layers = append(model.Layers, layer)
	}
	return model, nil
}

func translateLayer(v cty.Value, path string) (config.Layer, error) {
	if v.IsNull() || !v.Type().IsObjectType() {
		return config.Layer{}, &config.MalformedDocumentError{Err: fmt.Errorf("%s must be an object", path)}
	}
	kind, ok := attr(v, "layer_type")
	if !ok {
		return config.Layer{}, &config.MissingFieldError{Field: path + ".layer_type"}
	}
	if !kind.Type().Equals(cty.String) {
		return config.Layer{}, &config.MalformedDocumentError{Err: fmt.Errorf("%s.layer_type must be a string", path)}
	}

	params := make(map[string]cty.Value)
	for name, pv := range v.AsValueMap() {
		if name == "layer_type" || pv.IsNull() {
			continue
		}
		params[name] = pv
	}
	return config.Layer{Type: kind.AsString(), Parameters: params}, nil
}

// section reads a dataset, loss_function or optimizer declaration. The
// declaration inside model wins; the editor front-end places these next to
// model in the envelope, so that location is consulted second.
func section(envelope, modelVal cty.Value, name string) (*config.Component, error) {
	if v, ok := attr(modelVal, name); ok {
		return translateComponent(v, "model."+name)
	}
	if v, ok := attr(envelope, name); ok {
		return translateComponent(v, name)
	}
	return nil, nil
}

// translateComponent accepts either a bare string naming the type or an
// object with a "type" (or legacy "name") field. Parameters are the nested
// "parameters" object merged with any other sibling fields.
func translateComponent(v cty.Value, path string) (*config.Component, error) {
	if v.Type().Equals(cty.String) {
		return &config.Component{Type: v.AsString(), Parameters: map[string]cty.Value{}}, nil
	}
	if !v.Type().IsObjectType() {
		return nil, &config.MalformedDocumentError{Err: fmt.Errorf("%s must be a string or an object", path)}
	}

	kind, ok := attr(v, "type")
	if !ok {
		kind, ok = attr(v, "name")
	}
	if !ok {
		return nil, &config.MissingFieldError{Field: path + ".type"}
	}
	if !kind.Type().Equals(cty.String) {
		return nil, &config.MalformedDocumentError{Err: fmt.Errorf("%s.type must be a string", path)}
	}

	params := make(map[string]cty.Value)
	for name, pv := range v.AsValueMap() {
		switch name {
		case "type", "name", "parameters":
			continue
		}
		if !pv.IsNull() {
			params[name] = pv
		}
	}
	if nested, ok := attr(v, "parameters"); ok {
		if !nested.Type().IsObjectType() && !nested.Type().IsMapType() {
			return nil, &config.MalformedDocumentError{Err: fmt.Errorf("%s.parameters must be an object", path)}
		}
		for name, pv := range nested.AsValueMap() {
			if !pv.IsNull() {
				params[name] = pv
			}
		}
	}
	return &config.Component{Type: kind.AsString(), Parameters: params}, nil
}

// attr returns the named, non-null attribute of an object value.
func attr(obj cty.Value, name string) (cty.Value, bool) {
	if obj.IsNull() || !obj.Type().IsObjectType() || !obj.Type().HasAttribute(name) {
		return cty.NilVal, false
	}
	v := obj.GetAttr(name)
	if v.IsNull() {
		return cty.NilVal, false
	}
	return v, true
}

func describe(v cty.Value) string {
	switch {
	case v.Type().Equals(cty.String):
		return v.AsString()
	case v.Type().Equals(cty.Number):
		return v.AsBigFloat().Text('g', -1)
	case v.Type().Equals(cty.Bool):
		if v.True() {
			return "true"
		}
		return "false"
	default:
		return v.Type().FriendlyName()
	}
}
