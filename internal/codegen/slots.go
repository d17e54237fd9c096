package codegen

import (
	"strconv"

	"github.com/vk/torchgen/internal/config"
)

// Slot is a layer together with its sequential identifier.
type Slot struct {
	ID    int    // 1-based
	Field string // "layer<ID>"
	Layer config.Layer
}

// FieldName is the generated field name for identifier id.
func FieldName(id int) string {
	return "layer" + strconv.Itoa(id)
}

// AssignSlots numbers the layers in document order. Every layer consumes an
// identifier, including kinds that never allocate a field.
func AssignSlots(layers []config.Layer) []Slot {
	slots := make([]Slot, len(layers))
	for i, l := range layers {
		slots[i] = Slot{ID: i + 1, Field: FieldName(i + 1), Layer: l}
	}
	return slots
}
