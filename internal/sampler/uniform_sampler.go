package sampler

import (
	"context"
	"errors"
	"math"

	"github.com/ecopia-map/surface_sampler/internal/compute"
	"github.com/ecopia-map/surface_sampler/internal/data"
	"github.com/ecopia-map/surface_sampler/internal/surface"
	"github.com/golang/glog"
)

// Kernel is implemented by accelerators able to run the rasterization on a device.
// Returning compute.ErrFallbackToCPU makes UniformSurfaceSample run on the CPU.
type Kernel interface {
	UniformSurfaceSample(ctx context.Context, cloud *data.PointCloud, opts Options) (*surface.Surface, error)
}

// UniformSurfaceSample rasterizes an irregular point cloud into a regular height grid.
// Points with a non finite coordinate or falling outside the grid are ignored. Every cell
// reduces the quantized heights of its points according to opts.Mode; cells without points
// hold surface.Invalid and intensity 0. The output carries intensity iff the cloud does.
func UniformSurfaceSample(ctx context.Context, cc *compute.Context, cloud *data.PointCloud, opts Options) (*surface.Surface, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if cloud == nil {
		cloud = &data.PointCloud{}
	}
	if err := cloud.Validate(); err != nil {
		return nil, err
	}

	if accelerator, ok := cc.Accelerator(compute.OpSample); ok {
		if kernel, ok := accelerator.(Kernel); ok {
			s, err := kernel.UniformSurfaceSample(ctx, cloud, opts)
			if !errors.Is(err, compute.ErrFallbackToCPU) {
				return s, err
			}
			glog.V(1).Infof("sampler: %s declined %d points, sampling on CPU", accelerator.Name(), cloud.Len())
		}
	}

	return sampleOnCPU(ctx, cc, cloud, opts)
}

func sampleOnCPU(ctx context.Context, cc *compute.Context, cloud *data.PointCloud, opts Options) (*surface.Surface, error) {
	cellCount := opts.Width * opts.Height
	withIntensity := cloud.HasIntensity()
	cells := newGridCells(opts.mode(), cellCount, withIntensity)

	err := compute.ParallelFor(ctx, cc, cloud.Len(), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			cell, step, ok := locate(cloud.Points[i].X, cloud.Points[i].Y, cloud.Points[i].Z, &opts)
			if !ok {
				continue
			}
			var intensity uint8
			if withIntensity {
				intensity = cloud.Intensity[i]
			}
			cells.add(cell, step, intensity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	heights := make([]int16, cellCount)
	var intensities []uint8
	if withIntensity {
		intensities = make([]uint8, cellCount)
	}
	cells.finalize(heights, intensities)

	glog.V(2).Infof("sampler: %d points rasterized in a %dx%d %s grid", cloud.Len(), opts.Width, opts.Height, opts.mode())

	return surface.New(surface.HeightGrid, opts.Width, opts.Height, heights, intensities, opts.Scaling())
}

// Returns the cell hit by the point and its quantized height, false if the point must be skipped
func locate(x, y, z float32, opts *Options) (int, int64, bool) {
	step, ok := surface.QuantizeStep(z, opts.ZOffset, opts.ZScale)
	if !ok {
		return 0, 0, false
	}

	col := math.Floor(float64(x-opts.XOffset) / float64(opts.XScale))
	row := math.Floor(float64(y-opts.YOffset) / float64(opts.YScale))
	// NaN fails both comparisons
	if !(col >= 0 && col < float64(opts.Width)) || !(row >= 0 && row < float64(opts.Height)) {
		return 0, 0, false
	}

	if step > maxAccumulatedStep {
		step = maxAccumulatedStep
	} else if step < -maxAccumulatedStep {
		step = -maxAccumulatedStep
	}
	return int(row)*opts.Width + int(col), step, true
}
