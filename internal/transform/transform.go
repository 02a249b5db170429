package transform

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ecopia-map/surface_sampler/internal/compute"
	"github.com/ecopia-map/surface_sampler/internal/data"
	"github.com/ecopia-map/surface_sampler/internal/geometry"
	"github.com/ecopia-map/surface_sampler/internal/surface"
	"github.com/golang/glog"
)

// Kernel is implemented by accelerators able to transform a surface on a device.
// Returning compute.ErrFallbackToCPU makes TransformSurface run on the CPU.
type Kernel interface {
	TransformSurface(ctx context.Context, s *surface.Surface, m geometry.Matrix4) (*data.PointCloud, error)
}

// TransformSurface decodes every valid cell of s, applies m to it and returns the points
// whose transformed z is finite, in row-major order of their source cells. Intensity, when
// present, follows its point.
func TransformSurface(ctx context.Context, cc *compute.Context, s *surface.Surface, m geometry.Matrix4) (*data.PointCloud, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil surface", surface.ErrInvalidArgument)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if accelerator, ok := cc.Accelerator(compute.OpTransform); ok {
		if kernel, ok := accelerator.(Kernel); ok {
			cloud, err := kernel.TransformSurface(ctx, s, m)
			if !errors.Is(err, compute.ErrFallbackToCPU) {
				return cloud, err
			}
			glog.V(1).Infof("transform: %s declined the surface, transforming on CPU", accelerator.Name())
		}
	}

	var intensity []uint8
	if s.HasIntensity() {
		intensity = s.Intensity
	}
	return transformCells(ctx, cc, s.Cells(), intensity, func(cell int) (geometry.Point3, bool) {
		if !s.IsValid(cell) {
			return geometry.Point3{}, false
		}
		return geometry.TransformPoint3D(s.Point(cell), m), true
	})
}

// TransformPoints applies m to the finite points of the cloud, keeping those whose transformed z is finite
func TransformPoints(ctx context.Context, cc *compute.Context, cloud *data.PointCloud, m geometry.Matrix4) (*data.PointCloud, error) {
	if cloud == nil {
		return &data.PointCloud{}, nil
	}
	if err := cloud.Validate(); err != nil {
		return nil, err
	}
	var intensity []uint8
	if cloud.HasIntensity() {
		intensity = cloud.Intensity
	}
	return transformCells(ctx, cc, cloud.Len(), intensity, func(i int) (geometry.Point3, bool) {
		p := cloud.Points[i]
		if !p.IsFinite() {
			return geometry.Point3{}, false
		}
		return geometry.TransformPoint3D(p, m), true
	})
}

// transformCells runs in two passes over fixed chunks: the first counts the points kept by each
// chunk, the second writes them at the offsets given by the prefix sum of the counts, so the
// output keeps the source order without any synchronization.
func transformCells(ctx context.Context, cc *compute.Context, n int, intensity []uint8, at func(int) (geometry.Point3, bool)) (*data.PointCloud, error) {
	chunks := max(1, min(n, cc.Workers()*8))
	size := max(1, (n+chunks-1)/chunks)
	counts := make([]int, chunks+1)

	keep := func(i int) (geometry.Point3, bool) {
		p, ok := at(i)
		return p, ok && !math.IsNaN(float64(p.Z)) && !math.IsInf(float64(p.Z), 0)
	}

	err := compute.ParallelFor(ctx, cc, chunks, func(lo, hi int) error {
		for chunk := lo; chunk < hi; chunk++ {
			count := 0
			for i := chunk * size; i < min((chunk+1)*size, n); i++ {
				if _, ok := keep(i); ok {
					count++
				}
			}
			counts[chunk+1] = count
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(counts); i++ {
		counts[i] += counts[i-1]
	}

	out := &data.PointCloud{Points: make([]geometry.Point3, counts[chunks])}
	if intensity != nil {
		out.Intensity = make([]uint8, counts[chunks])
	}

	err = compute.ParallelFor(ctx, cc, chunks, func(lo, hi int) error {
		for chunk := lo; chunk < hi; chunk++ {
			w := counts[chunk]
			for i := chunk * size; i < min((chunk+1)*size, n); i++ {
				p, ok := keep(i)
				if !ok {
					continue
				}
				out.Points[w] = p
				if intensity != nil {
					out.Intensity[w] = intensity[i]
				}
				w++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
