package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top level of an envelope file. Sections declared next
// to the model block are accepted the same way the JSON loader accepts them.
type fileRoot struct {
	PacketType   hcl.Expression  `hcl:"packet_type,optional"`
	Model        *modelBlock     `hcl:"model,block"`
	Dataset      *componentBlock `hcl:"dataset,block"`
	LossFunction *componentBlock `hcl:"loss_function,block"`
	Optimizer    *componentBlock `hcl:"optimizer,block"`
	Remain       hcl.Body        `hcl:",remain"`
}

type modelBlock struct {
	Dataset      *componentBlock `hcl:"dataset,block"`
	LossFunction *componentBlock `hcl:"loss_function,block"`
	Optimizer    *componentBlock `hcl:"optimizer,block"`
	Layers       []*layerBlock   `hcl:"layer,block"`
}

// componentBlock is a dataset, loss_function or optimizer block; the label is
// the kind and every attribute in the body is a parameter.
type componentBlock struct {
	Type string   `hcl:"type,label"`
	Body hcl.Body `hcl:",remain"`
}

type layerBlock struct {
	Type string   `hcl:"layer_type,label"`
	Body hcl.Body `hcl:",remain"`
}
