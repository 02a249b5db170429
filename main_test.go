package main

import (
	"path/filepath"
	"testing"

	"github.com/ecopia-map/surface_sampler/internal/colormap"
	"github.com/ecopia-map/surface_sampler/internal/geometry"
	"github.com/ecopia-map/surface_sampler/internal/pipeline"
	"github.com/ecopia-map/surface_sampler/internal/sampler"
	"github.com/ecopia-map/surface_sampler/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptions(t *testing.T) {
	flags, err := tools.ParseFlagsForCommandTransform([]string{
		"-i", "in.ply", "-o", "out", "-mode", "min", "-color-mode", "color-with-intensity",
		"-matrix", "1,0,0,1,0,1,0,2,0,0,1,3,0,0,0,1", "-z", "0.5",
	})
	require.NoError(t, err)

	opts, msg, ok := newOptions(flags.SurfaceFlags, pipeline.CommandTransform)
	require.True(t, ok, msg)
	assert.Equal(t, sampler.Min, opts.Mode)
	assert.Equal(t, colormap.ColorWithIntensity, opts.ColorMode)
	assert.Equal(t, geometry.Translation(1, 2, 3), *opts.Matrix)
	assert.Equal(t, float32(0.5), opts.ElevationOffset)
	assert.Equal(t, pipeline.CommandTransform, opts.Command)

	flags, err = tools.ParseFlagsForCommandTransform([]string{"-matrix", "1,2"})
	require.NoError(t, err)
	_, _, ok = newOptions(flags.SurfaceFlags, pipeline.CommandTransform)
	assert.False(t, ok)
}

func TestValidateOptions(t *testing.T) {
	dir := t.TempDir()
	valid := func() *pipeline.Options {
		return &pipeline.Options{
			Input:     dir,
			Output:    filepath.Join(dir, "out"),
			XScale:    0.1,
			YScale:    0.1,
			Mode:      sampler.Average,
			ColorMode: colormap.Color,
			Fit:       true,
		}
	}

	_, ok := validateOptions(valid())
	assert.True(t, ok)

	tests := map[string]func(*pipeline.Options){
		"missing input": func(o *pipeline.Options) { o.Input = filepath.Join(dir, "missing") },
		"no output":     func(o *pipeline.Options) { o.Output = "" },
		"bad mode":      func(o *pipeline.Options) { o.Mode = "" },
		"bad color":     func(o *pipeline.Options) { o.ColorMode = "" },
		"zero scale":    func(o *pipeline.Options) { o.XScale = 0 },
		"negative fill": func(o *pipeline.Options) { o.FillHoles = -1 },
		"no width":      func(o *pipeline.Options) { o.Fit = false; o.Height = 2; o.ZScale = 1 },
		"zero zscale":   func(o *pipeline.Options) { o.Fit = false; o.Width = 2; o.Height = 2 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			opts := valid()
			mutate(opts)
			msg, ok := validateOptions(opts)
			assert.False(t, ok)
			assert.NotEmpty(t, msg)
		})
	}
}
