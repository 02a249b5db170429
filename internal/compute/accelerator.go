package compute

import (
	"errors"
	"fmt"
)

var (
	// ErrFallbackToCPU is returned by accelerator kernels that decline the
	// current input. The caller runs the CPU implementation instead.
	ErrFallbackToCPU = errors.New("compute: falling back to CPU")

	// ErrResourceInit is returned when an accelerator could not be initialized
	ErrResourceInit = errors.New("compute: accelerator initialization failed")
)

// Op is a bitmask of operations an accelerator may take over
type Op uint32

const (
	OpSample Op = 1 << iota
	OpTransform
	OpMeshIndex
)

func (o Op) String() string {
	switch o {
	case OpSample:
		return "sample"
	case OpTransform:
		return "transform"
	case OpMeshIndex:
		return "mesh-index"
	default:
		return fmt.Sprintf("op(%d)", uint32(o))
	}
}

// Accelerator is an optional device backend. Kernels are exposed through
// operation specific interfaces declared by the packages that consume them;
// an accelerator advertises them through CanAccelerate.
type Accelerator interface {
	Name() string
	// Init acquires the device resources. It is called once when the accelerator is bound to a Context.
	Init() error
	// Close releases every device resource acquired by Init.
	Close() error
	CanAccelerate(op Op) bool
}
