package mesh

import (
	"context"
	"fmt"
	"math"

	"github.com/ecopia-map/surface_sampler/internal/compute"
	"github.com/ecopia-map/surface_sampler/internal/geometry"
	"github.com/ecopia-map/surface_sampler/internal/surface"
)

// Mesh is a triangulated grid of decoded surface samples. Vertices, Valid, UVs and
// Intensity are index aligned; Intensity is nil when the surface has none.
type Mesh struct {
	Width     int // vertices per row
	Length    int // vertex rows
	Vertices  []geometry.Point3
	Valid     []bool
	UVs       [][2]float32
	Intensity []uint8
	Indices   []uint32
}

// BuildOptions controls the decimation applied while building a mesh
type BuildOptions struct {
	StepX       int // keep one column every StepX, 1 when not positive
	StepY       int // keep one row every StepY, 1 when not positive
	MaxVertices int // when positive and no step is given, steps are chosen to stay within this budget
}

// SamplingFactors returns the smallest column and row steps keeping a decimated
// width x length grid within maxVertices vertices
func SamplingFactors(width, length, maxVertices int) (int, int) {
	total := width * length
	if maxVertices <= 0 || total <= maxVertices {
		return 1, 1
	}
	rate := math.Sqrt(float64(maxVertices) / float64(total))
	stepX := max(1, int(1/rate))
	stepY := stepX
	for sampledCount(width, stepX)*sampledCount(length, stepY) > maxVertices {
		if stepX <= stepY {
			stepX++
		} else {
			stepY++
		}
	}
	return stepX, stepY
}

func sampledCount(n, step int) int {
	return (n + step - 1) / step
}

// Build decodes the surface at the decimated positions and triangulates the result.
// UVs map the source grid onto [0, 1] so a texture rendered at full resolution lines up.
func Build(ctx context.Context, cc *compute.Context, s *surface.Surface, opts BuildOptions) (*Mesh, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil surface", surface.ErrInvalidArgument)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	stepX, stepY := opts.StepX, opts.StepY
	if stepX <= 0 && stepY <= 0 {
		stepX, stepY = SamplingFactors(s.Width, s.Length, opts.MaxVertices)
	}
	stepX = max(stepX, 1)
	stepY = max(stepY, 1)

	width := sampledCount(s.Width, stepX)
	length := sampledCount(s.Length, stepY)
	m := &Mesh{
		Width:    width,
		Length:   length,
		Vertices: make([]geometry.Point3, width*length),
		Valid:    make([]bool, width*length),
		UVs:      make([][2]float32, width*length),
	}
	if s.HasIntensity() {
		m.Intensity = make([]uint8, width*length)
	}

	err := compute.ParallelFor(ctx, cc, length, func(lo, hi int) error {
		for y := lo; y < hi; y++ {
			srcY := y * stepY
			for x := 0; x < width; x++ {
				srcX := x * stepX
				src := srcY*s.Width + srcX
				v := y*width + x

				m.Vertices[v] = s.Point(src)
				m.Valid[v] = s.IsValid(src)
				m.UVs[v] = [2]float32{ratio(srcX, s.Width), ratio(srcY, s.Length)}
				if m.Intensity != nil {
					m.Intensity[v] = s.Intensity[src]
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.Indices, err = GenerateIndicesParallel(ctx, cc, width, length)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func ratio(i, n int) float32 {
	if n < 2 {
		return 0
	}
	return float32(i) / float32(n-1)
}

// ValidTriangles returns the triangles of the mesh whose three vertices hold a sample
func (m *Mesh) ValidTriangles() [][3]uint32 {
	triangles := make([][3]uint32, 0, len(m.Indices)/3)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if m.Valid[a] && m.Valid[b] && m.Valid[c] {
			triangles = append(triangles, [3]uint32{a, b, c})
		}
	}
	return triangles
}
