// Package config defines the format-agnostic model of a network description,
// the Loader interface implemented by the JSON and HCL envelope readers, and
// the errors a load can fail with.
//
// The `config.Model` is the only input of the code generator. Concrete
// loaders live in separate packages (`packet` for JSON, `hcl` for HCL).
package config
