// Package params binds the loosely typed parameters of a layer or component
// declaration to the Go input struct of the handler that generates it.
//
// Input structs declare their parameters with a `param` struct tag:
//
//	type Input struct {
//	    InShape      int     `param:"in_shape"`
//	    Stride       int     `param:"stride,optional"`
//	    LearningRate float64 `param:"learning_rate|lr,optional"`
//	}
//
// Alternate spellings are separated by "|". Optional fields keep whatever
// value the handler's constructor set when the parameter is absent, which is
// how defaults are expressed.
package params
