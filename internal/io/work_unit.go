package io

import (
	"github.com/ecopia-map/surface_sampler/internal/pipeline"
)

// Contains the minimal data needed to produce a single surface, i.e. the point cloud files to read and the
// folder where surface.ply, mesh.ply and heightmap.png are written
type WorkUnit struct {
	Name     string
	Files    []string
	Opts     *pipeline.Options
	BasePath string
}
