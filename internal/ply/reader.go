package ply

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chenzhekl/goply"
	"github.com/ecopia-map/surface_sampler/internal/data"
	"github.com/ecopia-map/surface_sampler/internal/geometry"
)

var ErrInvalidPly = errors.New("ply: invalid file")

const (
	vertexElement     = "vertex"
	intensityProperty = "intensity"
)

// ReadPointCloud parses an ASCII PLY stream and returns its vertices. Intensity is read from the
// "intensity" vertex property when every vertex carries one.
func ReadPointCloud(r io.Reader) (cloud *data.PointCloud, err error) {
	// the parser panics on malformed input
	defer func() {
		if rec := recover(); rec != nil {
			cloud = nil
			err = fmt.Errorf("%w: %v", ErrInvalidPly, rec)
		}
	}()

	elements := goply.New(r).Elements(vertexElement)

	cloud = &data.PointCloud{
		Points:    make([]geometry.Point3, len(elements)),
		Intensity: make([]uint8, len(elements)),
	}
	withIntensity := len(elements) > 0
	for i, element := range elements {
		x, okX := toFloat32(element["x"])
		y, okY := toFloat32(element["y"])
		z, okZ := toFloat32(element["z"])
		if !okX || !okY || !okZ {
			return nil, fmt.Errorf("%w: vertex %d has no numeric x, y, z", ErrInvalidPly, i)
		}
		cloud.Points[i] = geometry.Point3{X: x, Y: y, Z: z}

		if withIntensity {
			intensity, ok := toFloat32(element[intensityProperty])
			if !ok {
				withIntensity = false
				continue
			}
			cloud.Intensity[i] = clampByte(intensity)
		}
	}
	if !withIntensity {
		cloud.Intensity = nil
	}
	return cloud, nil
}

// ReadPointCloudFile opens the given file and parses it with ReadPointCloud
func ReadPointCloudFile(filePath string) (*data.PointCloud, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cloud, err := ReadPointCloud(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	return cloud, nil
}

func toFloat32(value interface{}) (float32, bool) {
	switch v := value.(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	case int8:
		return float32(v), true
	case uint8:
		return float32(v), true
	case int16:
		return float32(v), true
	case uint16:
		return float32(v), true
	case int32:
		return float32(v), true
	case uint32:
		return float32(v), true
	}
	return 0, false
}

func clampByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
