package sampler

import (
	"context"
	"fmt"

	"github.com/ecopia-map/surface_sampler/internal/compute"
	"github.com/ecopia-map/surface_sampler/internal/surface"
)

const DefaultHoleKernelSize = 3

// FillHoles returns a copy of the height grid where every invalid cell having at least one
// valid cell in the kernelSize x kernelSize window centered on it takes the rounded mean of
// those neighbours, for both height and intensity. Only cells valid in s are used as
// neighbours, so filled values never propagate.
func FillHoles(ctx context.Context, cc *compute.Context, s *surface.Surface, kernelSize int) (*surface.Surface, error) {
	if s == nil || s.Kind != surface.HeightGrid {
		return nil, fmt.Errorf("%w: holes can only be filled on a height grid", surface.ErrInvalidArgument)
	}
	if kernelSize < 1 {
		return nil, fmt.Errorf("%w: kernel size must be positive, got %d", surface.ErrInvalidArgument, kernelSize)
	}
	half := kernelSize / 2

	heights := make([]int16, len(s.Data))
	copy(heights, s.Data)
	var intensities []uint8
	if s.HasIntensity() {
		intensities = make([]uint8, len(s.Intensity))
		copy(intensities, s.Intensity)
	}

	err := compute.ParallelFor(ctx, cc, s.Length, func(lo, hi int) error {
		for row := lo; row < hi; row++ {
			for col := 0; col < s.Width; col++ {
				cell := row*s.Width + col
				if s.Data[cell] != surface.Invalid {
					continue
				}

				var heightSum, intensitySum, count int64
				for ny := max(row-half, 0); ny <= min(row+half, s.Length-1); ny++ {
					for nx := max(col-half, 0); nx <= min(col+half, s.Width-1); nx++ {
						neighbour := ny*s.Width + nx
						if s.Data[neighbour] == surface.Invalid {
							continue
						}
						heightSum += int64(s.Data[neighbour])
						if intensities != nil {
							intensitySum += int64(s.Intensity[neighbour])
						}
						count++
					}
				}
				if count == 0 {
					continue
				}
				heights[cell] = surface.Clamp(roundDiv(heightSum, count))
				if intensities != nil {
					intensities[cell] = surface.ClampIntensity(roundDiv(intensitySum, count))
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return surface.New(surface.HeightGrid, s.Width, s.Length, heights, intensities, s.Scaling)
}
