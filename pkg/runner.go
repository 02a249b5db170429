package pkg

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/ecopia-map/surface_sampler/internal/io"
	"github.com/ecopia-map/surface_sampler/internal/pipeline"
	"github.com/ecopia-map/surface_sampler/pkg/algorithm_manager"
	"github.com/ecopia-map/surface_sampler/tools"
	"github.com/golang/glog"
	"go.uber.org/multierr"
)

var ErrNoInputFiles = errors.New("no ply file found in input")

type ISurfaceRunner interface {
	Run(ctx context.Context, opts *pipeline.Options) error
}

// Runs the producer and a pool of consumers over the given files, returning the errors of all the failed work units
func runWorkUnits(ctx context.Context, producer io.Producer, files []string, opts *pipeline.Options, algorithmManager algorithm_manager.AlgorithmManager) error {
	// a consumer goroutine per CPU, no more than the files to process
	numConsumers := runtime.NumCPU()
	if opts.Workers > 0 {
		numConsumers = opts.Workers
	}
	if numConsumers > len(files) {
		numConsumers = len(files)
	}
	if numConsumers < 1 {
		numConsumers = 1
	}

	// init channel where to submit work with a buffer 5 times greater than the number of consumer
	workChannel := make(chan *io.WorkUnit, numConsumers*5)

	// init channel where consumers can submit errors that prevented them to finish a work unit
	errorChannel := make(chan error)

	// collect errors while the work is running, so that consumers never block on a full channel
	var errs error
	collected := make(chan struct{})
	go func() {
		for err := range errorChannel {
			glog.Errorln(err)
			errs = multierr.Append(errs, err)
		}
		close(collected)
	}()

	var waitGroup sync.WaitGroup

	// add producer to waitgroup and launch producer goroutine
	waitGroup.Add(1)
	go producer.Produce(ctx, workChannel, &waitGroup, files)

	// add consumers to waitgroup and launch them
	for i := 0; i < numConsumers; i++ {
		waitGroup.Add(1)
		consumer := io.NewStandardConsumer(
			algorithmManager.GetCoordinateConverterAlgorithm(),
			algorithmManager.GetElevationCorrectionAlgorithm(),
			algorithmManager.GetComputeContext(),
		)
		go consumer.Consume(ctx, workChannel, errorChannel, &waitGroup)
	}

	// wait for producers and consumers to finish
	waitGroup.Wait()
	close(errorChannel)
	<-collected

	if errs != nil {
		return errs
	}
	return ctx.Err()
}

// Releases the converters and the compute resources once a run is over
func releaseAlgorithms(algorithmManager algorithm_manager.AlgorithmManager) {
	if converter := algorithmManager.GetCoordinateConverterAlgorithm(); converter != nil {
		converter.Cleanup()
	}
	if err := algorithmManager.GetComputeContext().Close(); err != nil {
		glog.Warningf("releasing compute resources: %v", err)
	}
}

func logFiles(files []string) {
	tools.LogOutput("ply_file list", len(files), "files")
	for i, filePath := range files {
		glog.V(1).Infof("ply_file path %d [%s]", i, filePath)
	}
}
