package matrix_converter

import (
	"github.com/ecopia-map/surface_sampler/internal/converters"
	"github.com/ecopia-map/surface_sampler/internal/geometry"
)

// Converts points with a homogeneous 4x4 matrix, typically a sensor to world calibration
type MatrixCoordinateConverter struct {
	matrix geometry.Matrix4
}

func NewMatrixCoordinateConverter(matrix geometry.Matrix4) converters.CoordinateConverter {
	return &MatrixCoordinateConverter{
		matrix: matrix,
	}
}

func (c *MatrixCoordinateConverter) ConvertPoint(point geometry.Point3) geometry.Point3 {
	return geometry.TransformPoint3D(point, c.matrix)
}

func (c *MatrixCoordinateConverter) Cleanup() {}
