// Package registry maps the kind tags used in model documents ("linear",
// "adam", "mnist", ...) to the Go functions that generate code for them.
//
// Kind packages under modules/ register their handlers through the Module
// interface. The code generator only ever looks kinds up here, so adding a
// kind never touches the dispatch logic, and a kind with no handler is
// reported instead of silently skipped.
package registry
