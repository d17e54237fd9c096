package config

import "context"

// PacketTypeModelParams is the only envelope kind the compiler accepts.
const PacketTypeModelParams = "model_params"

// Loader is the interface for a format-specific envelope reader.
type Loader interface {
	// Load parses raw, checks the envelope discriminator and returns the
	// embedded model description. It never returns a partial model.
	Load(ctx context.Context, raw []byte) (*Model, error)
}
