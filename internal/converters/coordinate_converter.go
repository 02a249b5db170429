package converters

import (
	"github.com/ecopia-map/surface_sampler/internal/data"
	"github.com/ecopia-map/surface_sampler/internal/geometry"
)

// Brings input points in the frame where the grid is defined
type CoordinateConverter interface {
	ConvertPoint(point geometry.Point3) geometry.Point3
	Cleanup()
}

// Adjusts the height of a point already expressed in the grid frame
type ElevationCorrector interface {
	CorrectElevation(x, y, z float32) float32
}

// Converts and corrects every point of the cloud in place. Nil converters are skipped.
func ApplyToCloud(cloud *data.PointCloud, converter CoordinateConverter, corrector ElevationCorrector) {
	if cloud == nil || (converter == nil && corrector == nil) {
		return
	}
	for i, p := range cloud.Points {
		if converter != nil {
			p = converter.ConvertPoint(p)
		}
		if corrector != nil {
			p.Z = corrector.CorrectElevation(p.X, p.Y, p.Z)
		}
		cloud.Points[i] = p
	}
}
