package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/torchgen/internal/ctxlog"
)

// Validate checks that every registered handler can actually be called: each
// layer has an Init or a Forward function, each component has an Init
// function, and every NewInput returns a pointer to a struct whose exported
// parameter fields carry a `param` tag.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, kind := range r.SupportedLayers() {
		h := r.Layers[kind]
		if h == nil {
			errs = append(errs, fmt.Sprintf("layer '%s': handler is nil", kind))
			continue
		}
		if h.Init == nil && h.Forward == nil {
			// The default forward call would reference a field nothing creates.
			errs = append(errs, fmt.Sprintf("layer '%s': handler has neither Init nor Forward", kind))
		}
		errs = append(errs, checkInput("layer", kind, h.NewInput)...)
	}

	sections := []struct {
		name  string
		table map[string]*ComponentHandler
	}{
		{"loss", r.Losses},
		{"optimizer", r.Optimizers},
		{"dataset", r.Datasets},
	}
	for _, s := range sections {
		for _, kind := range sortedKeys(s.table) {
			h := s.table[kind]
			if h == nil || h.Init == nil {
				errs = append(errs, fmt.Sprintf("%s '%s': handler has no Init function", s.name, kind))
				continue
			}
			errs = append(errs, checkInput(s.name, kind, h.NewInput)...)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry handlers validated.",
		"layers", len(r.Layers), "losses", len(r.Losses), "optimizers", len(r.Optimizers), "datasets", len(r.Datasets))
	return nil
}

func checkInput(section, kind string, newInput func() any) []string {
	if newInput == nil {
		return nil
	}
	input := newInput()
	v := reflect.ValueOf(input)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return []string{fmt.Sprintf("%s '%s': NewInput must return a non-nil struct pointer, got %T", section, kind, input)}
	}

	var errs []string
	t := v.Elem().Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.IsExported() && field.Tag.Get("param") == "" {
			errs = append(errs, fmt.Sprintf("%s '%s': input field '%s' has no param tag", section, kind, field.Name))
		}
	}
	return errs
}
