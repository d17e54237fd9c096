package layers

import (
	"errors"
	"fmt"

	"github.com/vk/torchgen/internal/registry"
)

// ViewInput defines the trailing size of a reshape.
type ViewInput struct {
	OutShape int `param:"out_shape"`
}

// ValidateView rejects non-positive trailing sizes.
func ValidateView(input any) error {
	return positive("out_shape", input.(*ViewInput).OutShape)
}

// ForwardView flattens the running value to (-1, out_shape). A view layer
// has no field, so its statement never mentions its own identifier.
func ForwardView(s registry.Scope, input any) string {
	in := input.(*ViewInput)
	return fmt.Sprintf("%[1]s = %[1]s.view(-1, %[2]d)", s.Tensor, in.OutShape)
}

// MaxPool2dInput defines the window of a 2D max pooling step. A zero Stride
// means the window size, which is also torch's default.
type MaxPool2dInput struct {
	KernelSize int `param:"kernel_size,optional"`
	Stride     int `param:"stride,optional"`
	Padding    int `param:"padding,optional"`
}

// ValidateMaxPool2d rejects non-positive windows and padding wider than half
// the window.
func ValidateMaxPool2d(input any) error {
	in := input.(*MaxPool2dInput)
	var strideErr, padErr error
	if in.Stride < 0 {
		strideErr = fmt.Errorf("stride must not be negative, got %d", in.Stride)
	}
	if in.Padding < 0 || in.Padding > in.KernelSize/2 {
		padErr = fmt.Errorf("padding must be between 0 and half of kernel_size, got %d", in.Padding)
	}
	return errors.Join(positive("kernel_size", in.KernelSize), strideErr, padErr)
}

// ForwardMaxPool2d applies the functional max pooling to the running value.
// stride and padding are only spelled out when they differ from torch's
// defaults.
func ForwardMaxPool2d(s registry.Scope, input any) string {
	in := input.(*MaxPool2dInput)
	args := fmt.Sprintf("%s, %d", s.Tensor, in.KernelSize)
	if in.Stride > 0 && in.Stride != in.KernelSize {
		args += fmt.Sprintf(", stride=%d", in.Stride)
	}
	if in.Padding > 0 {
		args += fmt.Sprintf(", padding=%d", in.Padding)
	}
	return fmt.Sprintf("%s = torch.nn.functional.max_pool2d(%s)", s.Tensor, args)
}
