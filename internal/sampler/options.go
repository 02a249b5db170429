package sampler

import (
	"fmt"
	"math"
	"strings"

	"github.com/ecopia-map/surface_sampler/internal/surface"
)

type Mode string

const (
	// Arithmetic mean of the quantized heights falling in a cell, intensity averaged alike
	Average Mode = "AVERAGE"
	// Highest quantized height of a cell, with the intensity of a point attaining it
	Max Mode = "MAX"
	// Lowest quantized height of a cell, with the intensity of a point attaining it
	Min Mode = "MIN"
)

func (m Mode) String() string {
	return string(m)
}

// ParseMode normalizes value and returns the matching Mode, or "" if none matches
func ParseMode(value string) Mode {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	switch normalizedValue {
	case "AVERAGE", "AVG", "MEAN":
		return Average
	case "MAX":
		return Max
	case "MIN":
		return Min
	}
	return ""
}

// Contains the grid geometry and the reduction used by UniformSurfaceSample
type Options struct {
	Width   int     // number of columns of the output grid
	Height  int     // number of rows of the output grid
	XScale  float32 // cell size along x
	YScale  float32 // cell size along y
	ZScale  float32 // height quantization step
	XOffset float32 // x of the left edge of column 0
	YOffset float32 // y of the bottom edge of row 0
	ZOffset float32 // height encoded by raw code 0
	Mode    Mode    // per cell reduction, Average when empty
}

func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive, got %dx%d", surface.ErrInvalidArgument, o.Width, o.Height)
	}
	if o.Width > math.MaxInt32/o.Height {
		return fmt.Errorf("%w: grid of %dx%d cells is too large", surface.ErrInvalidArgument, o.Width, o.Height)
	}
	switch o.Mode {
	case Average, Max, Min, "":
	default:
		return fmt.Errorf("%w: unknown sampling mode %q", surface.ErrInvalidArgument, o.Mode)
	}
	return o.Scaling().Validate()
}

func (o Options) Scaling() surface.Scaling {
	return surface.Scaling{
		XOffset: o.XOffset,
		YOffset: o.YOffset,
		ZOffset: o.ZOffset,
		XScale:  o.XScale,
		YScale:  o.YScale,
		ZScale:  o.ZScale,
	}
}

func (o Options) mode() Mode {
	if o.Mode == "" {
		return Average
	}
	return o.Mode
}
