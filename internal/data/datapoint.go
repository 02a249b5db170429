package data

import (
	"fmt"

	"github.com/ecopia-map/surface_sampler/internal/geometry"
	"github.com/ecopia-map/surface_sampler/internal/surface"
)

// Contains the samples of a point cloud, namely X,Y,Z coords and an optional
// intensity per point. When present, Intensity is index aligned with Points.
type PointCloud struct {
	Points    []geometry.Point3
	Intensity []uint8
}

// Builds a new PointCloud from the given points and intensities
func NewPointCloud(points []geometry.Point3, intensity []uint8) (*PointCloud, error) {
	cloud := &PointCloud{
		Points:    points,
		Intensity: intensity,
	}
	if err := cloud.Validate(); err != nil {
		return nil, err
	}
	return cloud, nil
}

func (c *PointCloud) Validate() error {
	if len(c.Intensity) != 0 && len(c.Intensity) != len(c.Points) {
		return fmt.Errorf("%w: %d intensities for %d points", surface.ErrInvalidArgument, len(c.Intensity), len(c.Points))
	}
	return nil
}

func (c *PointCloud) Len() int {
	return len(c.Points)
}

func (c *PointCloud) HasIntensity() bool {
	return len(c.Intensity) != 0
}

// Appends the points of other to the cloud. Intensity is kept only if both clouds carry it,
// unless the receiver is empty.
func (c *PointCloud) Append(other *PointCloud) {
	if other == nil || other.Len() == 0 {
		return
	}
	keepIntensity := other.HasIntensity() && (c.HasIntensity() || c.Len() == 0)
	c.Points = append(c.Points, other.Points...)
	if keepIntensity {
		c.Intensity = append(c.Intensity, other.Intensity...)
	} else {
		c.Intensity = nil
	}
}

// Returns the bounding box of the finite points of the cloud
func (c *PointCloud) BoundingBox() (geometry.BoundingBox, bool) {
	return geometry.ComputeBoundingBox(c.Points)
}
