package std_algorithm_manager

import (
	"github.com/ecopia-map/surface_sampler/internal/compute"
	"github.com/ecopia-map/surface_sampler/internal/converters"
	"github.com/ecopia-map/surface_sampler/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/surface_sampler/internal/converters/matrix_converter"
	"github.com/ecopia-map/surface_sampler/internal/pipeline"
	"github.com/ecopia-map/surface_sampler/pkg/algorithm_manager"
)

type StandardAlgorithmManager struct {
	options             *pipeline.Options
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
	computeContext      *compute.Context
}

func NewAlgorithmManager(opts *pipeline.Options) algorithm_manager.AlgorithmManager {
	return &StandardAlgorithmManager{
		options:             opts,
		coordinateConverter: coordinateConverterFactory(opts),
		elevationCorrector:  elevationCorrectorFactory(opts),
		computeContext:      compute.NewContextOrCPU(compute.WithWorkers(opts.Workers)),
	}
}

func (m *StandardAlgorithmManager) GetElevationCorrectionAlgorithm() converters.ElevationCorrector {
	return m.elevationCorrector
}

func (m *StandardAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return m.coordinateConverter
}

func (m *StandardAlgorithmManager) GetComputeContext() *compute.Context {
	return m.computeContext
}

// The transform command applies the matrix to the sampled surface, so it is not a pre-transform
func coordinateConverterFactory(opts *pipeline.Options) converters.CoordinateConverter {
	if opts.Matrix == nil || opts.Command == pipeline.CommandTransform {
		return nil
	}
	return matrix_converter.NewMatrixCoordinateConverter(*opts.Matrix)
}

func elevationCorrectorFactory(opts *pipeline.Options) converters.ElevationCorrector {
	if opts.ElevationOffset == 0 {
		return nil
	}
	return offset_elevation_corrector.NewOffsetElevationCorrector(opts.ElevationOffset)
}
