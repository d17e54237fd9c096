// Package codegen compiles a config.Model into the source of a
// torch.nn.Module subclass.
//
// Generation happens in three steps. Every layer is first bound to a 1-based
// sequential identifier and to the registry handler for its kind, with its
// parameters decoded into the handler's input struct. The init fragment
// (datasets, loss, layer fields, optimizer) and the forward fragment (one
// statement per layer and a return) are then built from that single binding,
// so a layer's field name in __init__ and in forward can never drift apart.
// Finally the fragments are wrapped in the class and import lines and
// rendered through the linetree package.
//
// Kinds without a handler are never skipped silently: all of them are
// collected and returned together, and no source is produced.
package codegen
