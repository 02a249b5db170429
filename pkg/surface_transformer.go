package pkg

import (
	"context"
	"errors"

	"github.com/ecopia-map/surface_sampler/internal/io"
	"github.com/ecopia-map/surface_sampler/internal/pipeline"
	"github.com/ecopia-map/surface_sampler/pkg/algorithm_manager"
	"github.com/ecopia-map/surface_sampler/tools"
)

var ErrMissingMatrix = errors.New("transform requires a matrix")

// Samples every input point cloud, transforms the surface and samples the result again
type SurfaceTransformer struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewSurfaceTransformer(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) ISurfaceRunner {
	return &SurfaceTransformer{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

func (transformer *SurfaceTransformer) Run(ctx context.Context, opts *pipeline.Options) error {
	defer releaseAlgorithms(transformer.algorithmManager)

	if opts.Matrix == nil {
		return ErrMissingMatrix
	}

	transformOpts := opts.Copy()
	transformOpts.Command = pipeline.CommandTransform

	files, err := transformer.fileFinder.GetPlyFilesToProcess(transformOpts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoInputFiles
	}
	logFiles(files)

	return runWorkUnits(ctx, io.NewStandardProducer(opts.Output, transformOpts), files, transformOpts, transformer.algorithmManager)
}
