package pkg

import (
	"context"

	"github.com/ecopia-map/surface_sampler/internal/io"
	"github.com/ecopia-map/surface_sampler/internal/pipeline"
	"github.com/ecopia-map/surface_sampler/pkg/algorithm_manager"
	"github.com/ecopia-map/surface_sampler/tools"
)

// Samples every input point cloud on its own grid
type SurfaceSampler struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewSurfaceSampler(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) ISurfaceRunner {
	return &SurfaceSampler{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

func (sampler *SurfaceSampler) Run(ctx context.Context, opts *pipeline.Options) error {
	defer releaseAlgorithms(sampler.algorithmManager)

	tools.LogOutput("Preparing list of files to process...")

	files, err := sampler.fileFinder.GetPlyFilesToProcess(opts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoInputFiles
	}
	logFiles(files)

	return runWorkUnits(ctx, io.NewStandardProducer(opts.Output, opts), files, opts, sampler.algorithmManager)
}
