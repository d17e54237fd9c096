package layers

import (
	"errors"
	"fmt"

	"github.com/vk/torchgen/internal/registry"
)

// Conv2dInput defines the parameters of a 2D convolution.
type Conv2dInput struct {
	InChannels  int `param:"in_channels"`
	OutChannels int `param:"out_channels"`
	KernelSize  int `param:"kernel_size"`
	Stride      int `param:"stride,optional"`
	Padding     int `param:"padding,optional"`
}

// ValidateConv2d rejects non-positive sizes and negative padding.
func ValidateConv2d(input any) error {
	in := input.(*Conv2dInput)
	var padErr error
	if in.Padding < 0 {
		padErr = fmt.Errorf("padding must not be negative, got %d", in.Padding)
	}
	return errors.Join(
		positive("in_channels", in.InChannels),
		positive("out_channels", in.OutChannels),
		positive("kernel_size", in.KernelSize),
		positive("stride", in.Stride),
		padErr,
	)
}

// InitConv2d constructs a torch.nn.Conv2d sub-module.
func InitConv2d(s registry.Scope, input any) []string {
	in := input.(*Conv2dInput)
	return []string{fmt.Sprintf("self.%s = torch.nn.Conv2d(%d, %d, kernel_size=%d, stride=%d, padding=%d)",
		s.Field, in.InChannels, in.OutChannels, in.KernelSize, in.Stride, in.Padding)}
}
