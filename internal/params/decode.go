package params

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/vk/torchgen/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// MissingError reports a required parameter that was not supplied.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Name)
}

type fieldSpec struct {
	names    []string
	optional bool
}

func parseTag(tag string) (fieldSpec, bool) {
	if tag == "" || tag == "-" {
		return fieldSpec{}, false
	}
	parts := strings.Split(tag, ",")
	spec := fieldSpec{names: strings.Split(parts[0], "|")}
	for _, opt := range parts[1:] {
		if opt == "optional" {
			spec.optional = true
		}
	}
	return spec, true
}

// Decode populates the struct pointed to by target from params. It returns
// the sorted names of parameters no field claimed, so callers can warn about
// them.
func Decode(ctx context.Context, params map[string]cty.Value, target any) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() || structVal.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("target must be a non-nil pointer to a struct, got %T", target)
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	claimed := make(map[string]struct{})
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)
		if !fieldVal.CanSet() {
			continue
		}
		spec, ok := parseTag(field.Tag.Get("param"))
		if !ok {
			continue
		}

		var (
			val   cty.Value
			found bool
			name  = spec.names[0]
		)
		for _, n := range spec.names {
			claimed[n] = struct{}{}
			if v, ok := params[n]; ok && !found && !v.IsNull() {
				val, found, name = v, true, n
			}
		}

		if !found {
			if !spec.optional {
				return nil, &MissingError{Name: spec.names[0]}
			}
			logger.Debug("Parameter absent, keeping default.", "param", spec.names[0], "default", fieldVal.Interface())
			continue
		}
		if err := decode(val, fieldVal.Addr().Interface()); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
	}

	var unused []string
	for name := range params {
		if _, ok := claimed[name]; !ok {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	return unused, nil
}

// decode converts val to the cty type implied by the Go target and stores it.
func decode(val cty.Value, goVal any) error {
	impliedType, err := gocty.ImpliedType(reflect.ValueOf(goVal).Elem().Interface())
	if err != nil {
		return gocty.FromCtyValue(val, goVal)
	}

	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, goVal)
}
