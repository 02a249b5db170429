package io

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/ecopia-map/surface_sampler/internal/colormap"
	"github.com/ecopia-map/surface_sampler/internal/compute"
	"github.com/ecopia-map/surface_sampler/internal/converters"
	"github.com/ecopia-map/surface_sampler/internal/data"
	"github.com/ecopia-map/surface_sampler/internal/mesh"
	"github.com/ecopia-map/surface_sampler/internal/pipeline"
	"github.com/ecopia-map/surface_sampler/internal/ply"
	"github.com/ecopia-map/surface_sampler/internal/sampler"
	"github.com/ecopia-map/surface_sampler/internal/surface"
	"github.com/ecopia-map/surface_sampler/internal/transform"
	"github.com/ecopia-map/surface_sampler/tools"
	"github.com/golang/glog"
)

const (
	SurfaceFileName   = "surface.ply"
	MeshFileName      = "mesh.ply"
	HeightmapFileName = "heightmap.png"
)

type StandardConsumer struct {
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
	computeContext      *compute.Context
}

func NewStandardConsumer(coordinateConverter converters.CoordinateConverter, elevationCorrector converters.ElevationCorrector, computeContext *compute.Context) *StandardConsumer {
	return &StandardConsumer{
		coordinateConverter: coordinateConverter,
		elevationCorrector:  elevationCorrector,
		computeContext:      computeContext,
	}
}

// Continually consumes WorkUnits submitted to a work channel producing the corresponding surface files.
// Continues working until the work channel is closed; failed units are reported on the error channel
// and do not stop the consumer.
func (c *StandardConsumer) Consume(ctx context.Context, workchan chan *WorkUnit, errchan chan error, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	for work := range workchan {
		if err := c.doWork(ctx, work); err != nil {
			errchan <- fmt.Errorf("%s: %w", work.Name, err)
		}
	}
}

// Takes a workunit and writes the corresponding surface.ply, mesh.ply and heightmap.png files
func (c *StandardConsumer) doWork(ctx context.Context, workUnit *WorkUnit) error {
	cloud, err := c.loadPointCloud(workUnit.Files)
	if err != nil {
		return err
	}

	s, err := c.sampleSurface(ctx, cloud, workUnit.Opts)
	if err != nil {
		return err
	}
	defer s.Dispose()

	if err := tools.CreateDirectoryIfDoesNotExist(workUnit.BasePath); err != nil {
		return err
	}
	if err := c.writeSurfacePlyFile(s, workUnit.Opts.ColorMode, path.Join(workUnit.BasePath, SurfaceFileName)); err != nil {
		return err
	}
	if err := c.writeMeshPlyFile(ctx, s, path.Join(workUnit.BasePath, MeshFileName)); err != nil {
		return err
	}
	if err := c.writeHeightmapFile(s, workUnit.Opts.ColorMode, path.Join(workUnit.BasePath, HeightmapFileName)); err != nil {
		return err
	}

	tools.LogOutput("> done processing", workUnit.Name)
	return nil
}

// Reads and concatenates the point clouds, then brings them in the grid frame
func (c *StandardConsumer) loadPointCloud(files []string) (*data.PointCloud, error) {
	cloud := &data.PointCloud{}
	for _, file := range files {
		tools.LogOutput("> reading data from ply file...", path.Base(file))
		fileCloud, err := ply.ReadPointCloudFile(file)
		if err != nil {
			return nil, err
		}
		cloud.Append(fileCloud)
	}
	converters.ApplyToCloud(cloud, c.coordinateConverter, c.elevationCorrector)
	glog.V(1).Infof("io: loaded %d points from %d files", cloud.Len(), len(files))
	return cloud, nil
}

func (c *StandardConsumer) sampleSurface(ctx context.Context, cloud *data.PointCloud, opts *pipeline.Options) (*surface.Surface, error) {
	gridOpts := opts.SamplerOptions()
	if opts.Fit {
		var err error
		gridOpts, err = sampler.FitGrid(cloud, opts.XScale, opts.YScale, opts.ZScale, opts.Mode)
		if err != nil {
			return nil, err
		}
	}

	tools.LogOutput("> sampling", cloud.Len(), "points in a", fmt.Sprintf("%dx%d", gridOpts.Width, gridOpts.Height), "grid...")
	s, err := sampler.UniformSurfaceSample(ctx, c.computeContext, cloud, gridOpts)
	if err != nil {
		return nil, err
	}

	if opts.Command == pipeline.CommandTransform && opts.Matrix != nil {
		tools.LogOutput("> transforming surface...")
		transformed, err := transform.Resample(ctx, c.computeContext, s, *opts.Matrix, transform.ResampleOptions{
			XScale: opts.XScale,
			YScale: opts.YScale,
			Mode:   opts.Mode,
		})
		s.Dispose()
		if err != nil {
			return nil, err
		}
		s = transformed
	}

	if opts.FillHoles > 0 {
		filled, err := sampler.FillHoles(ctx, c.computeContext, s, opts.FillHoles)
		s.Dispose()
		if err != nil {
			return nil, err
		}
		s = filled
	}
	return s, nil
}

// Writes the valid samples of the surface, colored according to colorMode
func (c *StandardConsumer) writeSurfacePlyFile(s *surface.Surface, colorMode colormap.Mode, filePath string) error {
	return ply.WritePlyFile(filePath, surfaceVertices(s, colorMode), s.HasIntensity())
}

// Returns the valid samples whose decoded coordinates are finite. Cells are black when the
// surface has no finite height to build a color range from.
func surfaceVertices(s *surface.Surface, colorMode colormap.Mode) []ply.Vertex {
	var colors []uint8
	if zMin, zMax, ok := colormap.HeightRange(s); ok {
		shaded := colormap.ShadeSurface(s, zMin, zMax, colorModeOrDefault(colorMode))
		colors = make([]uint8, 0, len(shaded)*3)
		for _, color := range shaded {
			r, g, b := color.Clamped().RGB255()
			colors = append(colors, r, g, b)
		}
	}

	vertices := make([]ply.Vertex, 0, s.ValidCount())
	for cell := 0; cell < s.Cells(); cell++ {
		if !s.IsValid(cell) {
			continue
		}
		p := s.Point(cell)
		if !p.IsFinite() {
			continue
		}
		v := ply.Vertex{X: p.X, Y: p.Y, Z: p.Z}
		if colors != nil {
			v.R, v.G, v.B = colors[cell*3], colors[cell*3+1], colors[cell*3+2]
		}
		if s.HasIntensity() {
			v.Intensity = s.Intensity[cell]
		}
		vertices = append(vertices, v)
	}
	return vertices
}

// Writes the triangulated surface keeping only the valid vertices and the triangles joining them
func (c *StandardConsumer) writeMeshPlyFile(ctx context.Context, s *surface.Surface, filePath string) error {
	m, err := mesh.Build(ctx, c.computeContext, s, mesh.BuildOptions{})
	if err != nil {
		return err
	}

	remap := make([]uint32, len(m.Vertices))
	vertices := make([]ply.Vertex, 0, len(m.Vertices))
	for i, p := range m.Vertices {
		// overflowing decodes are dropped along with their triangles
		m.Valid[i] = m.Valid[i] && p.IsFinite()
		if !m.Valid[i] {
			continue
		}
		remap[i] = uint32(len(vertices))
		v := ply.Vertex{X: p.X, Y: p.Y, Z: p.Z}
		if m.Intensity != nil {
			v.Intensity = m.Intensity[i]
		}
		vertices = append(vertices, v)
	}

	faces := m.ValidTriangles()
	for i, face := range faces {
		faces[i] = [3]uint32{remap[face[0]], remap[face[1]], remap[face[2]]}
	}
	return ply.WriteMeshPlyFile(filePath, vertices, faces, m.Intensity != nil)
}

func (c *StandardConsumer) writeHeightmapFile(s *surface.Surface, colorMode colormap.Mode, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	if err := colormap.WriteHeightmapPNG(file, s, colorModeOrDefault(colorMode)); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func colorModeOrDefault(mode colormap.Mode) colormap.Mode {
	if mode == "" {
		return colormap.Color
	}
	return mode
}
