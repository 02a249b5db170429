package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecopia-map/surface_sampler/internal/compute"
	"github.com/ecopia-map/surface_sampler/internal/geometry"
	"github.com/ecopia-map/surface_sampler/internal/sampler"
	"github.com/ecopia-map/surface_sampler/internal/surface"
	"github.com/golang/glog"
)

// ErrEmptyResult is returned when no sample survives a transformation
var ErrEmptyResult = errors.New("transform: no valid sample left after transformation")

const DefaultResampleStep = 0.01

type ResampleOptions struct {
	XScale float32      // cell size of the output grid along x, DefaultResampleStep when not positive
	YScale float32      // cell size of the output grid along y, DefaultResampleStep when not positive
	ZScale float32      // quantization step, derived from the height range when not positive
	Mode   sampler.Mode // per cell reduction, Average when empty
}

// Resample transforms the surface with m and rasterizes the result in a new height grid
// fitted around the transformed samples. Heights are encoded relative to the center of the
// transformed bounding box.
func Resample(ctx context.Context, cc *compute.Context, s *surface.Surface, m geometry.Matrix4, opts ResampleOptions) (*surface.Surface, error) {
	cloud, err := TransformSurface(ctx, cc, s, m)
	if err != nil {
		return nil, err
	}

	box, ok := cloud.BoundingBox()
	if !ok {
		return nil, ErrEmptyResult
	}

	xScale, yScale := opts.XScale, opts.YScale
	if xScale <= 0 {
		xScale = DefaultResampleStep
	}
	if yScale <= 0 {
		yScale = DefaultResampleStep
	}

	gridOpts, err := sampler.FitBox(box, xScale, yScale, opts.ZScale, opts.Mode)
	if err != nil {
		return nil, fmt.Errorf("fitting resampled grid: %w", err)
	}
	if opts.ZScale <= 0 && box.Size.Depth <= 0 {
		// flat result, keep the source resolution
		gridOpts.ZScale = s.ZScale
	}

	glog.V(1).Infof("transform: resampling %d points in a %dx%d grid", cloud.Len(), gridOpts.Width, gridOpts.Height)

	return sampler.UniformSurfaceSample(ctx, cc, cloud, gridOpts)
}
