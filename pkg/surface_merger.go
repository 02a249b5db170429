package pkg

import (
	"context"

	"github.com/ecopia-map/surface_sampler/internal/io"
	"github.com/ecopia-map/surface_sampler/internal/pipeline"
	"github.com/ecopia-map/surface_sampler/pkg/algorithm_manager"
	"github.com/ecopia-map/surface_sampler/tools"
)

// Merges all the input point clouds and samples them on a single grid
type SurfaceMerger struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewSurfaceMerger(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) ISurfaceRunner {
	return &SurfaceMerger{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

func (merger *SurfaceMerger) Run(ctx context.Context, opts *pipeline.Options) error {
	defer releaseAlgorithms(merger.algorithmManager)

	tools.LogOutput("Preparing list of files to merge...")

	files, err := merger.fileFinder.GetPlyFilesToMerge(opts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoInputFiles
	}
	logFiles(files)

	return runWorkUnits(ctx, io.NewStandardMergeProducer(opts.Output, opts), files, opts, merger.algorithmManager)
}
