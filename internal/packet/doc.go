// Package packet reads the JSON model_params envelope produced by the network
// editor. Documents are decoded with go-cty's JSON support, so every parameter
// reaches the generator as a cty.Value and is later bound to typed inputs by
// the params package.
package packet
