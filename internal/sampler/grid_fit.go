package sampler

import (
	"fmt"

	"github.com/ecopia-map/surface_sampler/internal/data"
	"github.com/ecopia-map/surface_sampler/internal/geometry"
	"github.com/ecopia-map/surface_sampler/internal/surface"
	"github.com/shopspring/decimal"
)

// number of distinct raw codes available to encode heights
var rawCodeRange = decimal.NewFromInt(65535)

// FitGrid derives the grid enclosing every finite point of the cloud for the given cell sizes.
// The grid has floor(extent/scale)+1 cells per axis and is centered on the bounding box, so points
// lying on the edges of the box fall inside it. When zScale is not positive the quantization step
// spreads the height range over all raw codes. Heights are encoded relative to the box center.
func FitGrid(cloud *data.PointCloud, xScale, yScale, zScale float32, mode Mode) (Options, error) {
	if cloud == nil {
		return Options{}, fmt.Errorf("%w: nil point cloud", surface.ErrInvalidArgument)
	}
	box, ok := cloud.BoundingBox()
	if !ok {
		return Options{}, fmt.Errorf("%w: point cloud has no finite point", surface.ErrInvalidArgument)
	}
	return FitBox(box, xScale, yScale, zScale, mode)
}

// FitBox is FitGrid for an already computed bounding box
func FitBox(box geometry.BoundingBox, xScale, yScale, zScale float32, mode Mode) (Options, error) {
	if xScale <= 0 || yScale <= 0 {
		return Options{}, fmt.Errorf("%w: cell sizes must be positive, got %v x %v", surface.ErrInvalidArgument, xScale, yScale)
	}
	width := cellsAlong(box.Size.Width, xScale)
	height := cellsAlong(box.Size.Height, yScale)

	opts := Options{
		Width:   width,
		Height:  height,
		XScale:  xScale,
		YScale:  yScale,
		ZScale:  zScale,
		XOffset: box.Center.X - float32(width)*xScale/2,
		YOffset: box.Center.Y - float32(height)*yScale/2,
		ZOffset: box.Center.Z,
		Mode:    mode,
	}
	if zScale <= 0 {
		opts.ZScale = HeightStep(box.Size.Depth)
	}
	return opts, opts.Validate()
}

// HeightStep returns the quantization step spreading depth over every raw code,
// 1 if depth is not positive
func HeightStep(depth float32) float32 {
	if !(depth > 0) {
		return 1
	}
	step, _ := decimal.NewFromFloat32(depth).Div(rawCodeRange).Float64()
	if step == 0 {
		return 1
	}
	return float32(step)
}

func cellsAlong(extent, scale float32) int {
	if !(extent > 0) {
		return 1
	}
	return int(decimal.NewFromFloat32(extent).Div(decimal.NewFromFloat32(scale)).Floor().IntPart()) + 1
}
