package mesh

import (
	"context"
	"errors"

	"github.com/ecopia-map/surface_sampler/internal/compute"
	"github.com/golang/glog"
)

// number of indices emitted for each quad of the grid
const IndicesPerQuad = 6

// IndexKernel is implemented by accelerators able to build the index buffer on a device
type IndexKernel interface {
	GenerateIndices(ctx context.Context, width, length int) ([]uint32, error)
}

// IndexCount returns the number of indices generated for a width x length grid
func IndexCount(width, length int) int {
	if width < 2 || length < 2 {
		return 0
	}
	return (width - 1) * (length - 1) * IndicesPerQuad
}

// GenerateIndices triangulates a width x length grid of vertices stored in row-major order.
// Each quad with top-left vertex tl = y*width+x produces the triangles {tl, bl, tr} and
// {tr, bl, br}; quads are visited row by row. Invalid samples are not filtered out.
func GenerateIndices(width, length int) []uint32 {
	indices := make([]uint32, IndexCount(width, length))
	writeRows(indices, width, 0, length-1)
	return indices
}

// GenerateIndicesParallel returns the same sequence as GenerateIndices, filling disjoint row ranges concurrently
func GenerateIndicesParallel(ctx context.Context, cc *compute.Context, width, length int) ([]uint32, error) {
	if accelerator, ok := cc.Accelerator(compute.OpMeshIndex); ok {
		if kernel, ok := accelerator.(IndexKernel); ok {
			indices, err := kernel.GenerateIndices(ctx, width, length)
			if !errors.Is(err, compute.ErrFallbackToCPU) {
				return indices, err
			}
			glog.V(1).Infof("mesh: %s declined the index buffer, building it on CPU", accelerator.Name())
		}
	}

	indices := make([]uint32, IndexCount(width, length))
	if len(indices) == 0 {
		return indices, nil
	}
	err := compute.ParallelFor(ctx, cc, length-1, func(lo, hi int) error {
		writeRows(indices, width, lo, hi)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return indices, nil
}

// fills the indices of the quads whose top row is in [fromRow, toRow)
func writeRows(indices []uint32, width, fromRow, toRow int) {
	if width < 2 {
		return
	}
	i := fromRow * (width - 1) * IndicesPerQuad
	for y := fromRow; y < toRow; y++ {
		rowStart := uint32(y * width)
		nextRowStart := uint32((y + 1) * width)
		for x := uint32(0); x < uint32(width-1); x++ {
			tl := rowStart + x
			tr := tl + 1
			bl := nextRowStart + x
			br := bl + 1

			indices[i] = tl
			indices[i+1] = bl
			indices[i+2] = tr
			indices[i+3] = tr
			indices[i+4] = bl
			indices[i+5] = br
			i += IndicesPerQuad
		}
	}
}
