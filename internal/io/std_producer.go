package io

import (
	"context"
	"path"
	"sync"

	"github.com/ecopia-map/surface_sampler/internal/pipeline"
	"github.com/ecopia-map/surface_sampler/tools"
)

const MergedSurfaceName = "merged"

type StandardProducer struct {
	basePath string
	options  *pipeline.Options
}

func NewStandardProducer(basepath string, options *pipeline.Options) *StandardProducer {
	return &StandardProducer{
		basePath: basepath,
		options:  options,
	}
}

// Submits a WorkUnit per file to the provided workchannel, each writing in a subfolder named after the file.
// Closes the channel when all work is submitted or ctx is cancelled.
func (p *StandardProducer) Produce(ctx context.Context, work chan *WorkUnit, wg *sync.WaitGroup, files []string) {
	defer wg.Done()
	defer close(work)

	for _, file := range files {
		name := tools.GetFilenameWithoutExtension(file)
		unit := &WorkUnit{
			Name:     name,
			Files:    []string{file},
			BasePath: path.Join(p.basePath, name),
			Opts:     p.options,
		}
		select {
		case work <- unit:
		case <-ctx.Done():
			return
		}
	}
}

type StandardMergeProducer struct {
	basePath string
	options  *pipeline.Options
}

func NewStandardMergeProducer(basepath string, options *pipeline.Options) *StandardMergeProducer {
	return &StandardMergeProducer{
		basePath: basepath,
		options:  options,
	}
}

// Submits a single WorkUnit holding all the files, then closes the channel
func (p *StandardMergeProducer) Produce(ctx context.Context, work chan *WorkUnit, wg *sync.WaitGroup, files []string) {
	defer wg.Done()
	defer close(work)

	if len(files) == 0 {
		return
	}
	unit := &WorkUnit{
		Name:     MergedSurfaceName,
		Files:    files,
		BasePath: path.Join(p.basePath, MergedSurfaceName),
		Opts:     p.options,
	}
	select {
	case work <- unit:
	case <-ctx.Done():
	}
}
