package offset_elevation_corrector

import "github.com/ecopia-map/surface_sampler/internal/converters"

// Shifts every height by a constant, e.g. to compensate a sensor mounting height
type OffsetElevationCorrector struct {
	Offset float32
}

func NewOffsetElevationCorrector(offset float32) converters.ElevationCorrector {
	return &OffsetElevationCorrector{
		Offset: offset,
	}
}

func (c *OffsetElevationCorrector) CorrectElevation(x, y, z float32) float32 {
	return z + c.Offset
}
