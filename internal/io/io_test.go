package io

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ecopia-map/surface_sampler/internal/colormap"
	"github.com/ecopia-map/surface_sampler/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/surface_sampler/internal/geometry"
	"github.com/ecopia-map/surface_sampler/internal/pipeline"
	"github.com/ecopia-map/surface_sampler/internal/ply"
	"github.com/ecopia-map/surface_sampler/internal/sampler"
	"github.com/ecopia-map/surface_sampler/internal/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2x2 grid of unit cells with one empty cell
func writeCloud(t *testing.T, dir, name string, z float32) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, ply.WritePlyFile(path, []ply.Vertex{
		{X: 0.5, Y: 0.5, Z: z, Intensity: 10},
		{X: 1.5, Y: 0.5, Z: z + 1, Intensity: 20},
		{X: 0.5, Y: 1.5, Z: z + 2, Intensity: 30},
	}, true))
	return path
}

func gridOptions() *pipeline.Options {
	return &pipeline.Options{
		Width:     2,
		Height:    2,
		XScale:    1,
		YScale:    1,
		ZScale:    0.5,
		Mode:      sampler.Average,
		ColorMode: colormap.Color,
		Command:   pipeline.CommandSample,
	}
}

func runUnits(t *testing.T, consumer *StandardConsumer, producer Producer, files []string) []error {
	t.Helper()
	ctx := context.Background()
	work := make(chan *WorkUnit, 2)
	errs := make(chan error, len(files)+1)

	var wg sync.WaitGroup
	wg.Add(2)
	go producer.Produce(ctx, work, &wg, files)
	go consumer.Consume(ctx, work, errs, &wg)
	wg.Wait()
	close(errs)

	var out []error
	for err := range errs {
		out = append(out, err)
	}
	return out
}

func TestStandardProducer(t *testing.T) {
	opts := gridOptions()
	work := make(chan *WorkUnit, 4)
	var wg sync.WaitGroup
	wg.Add(1)
	NewStandardProducer("out", opts).Produce(context.Background(), work, &wg, []string{"a/one.ply", "b/two.ply"})
	wg.Wait()

	var units []*WorkUnit
	for unit := range work {
		units = append(units, unit)
	}
	require.Len(t, units, 2)
	assert.Equal(t, &WorkUnit{Name: "one", Files: []string{"a/one.ply"}, BasePath: filepath.Join("out", "one"), Opts: opts}, units[0])
	assert.Equal(t, "two", units[1].Name)
}

func TestStandardMergeProducer(t *testing.T) {
	work := make(chan *WorkUnit, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	NewStandardMergeProducer("out", gridOptions()).Produce(context.Background(), work, &wg, []string{"a.ply", "b.ply"})

	unit, ok := <-work
	require.True(t, ok)
	assert.Equal(t, MergedSurfaceName, unit.Name)
	assert.Equal(t, []string{"a.ply", "b.ply"}, unit.Files)
	_, ok = <-work
	assert.False(t, ok)
}

func TestStandardProducerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	work := make(chan *WorkUnit)
	var wg sync.WaitGroup
	wg.Add(1)
	NewStandardProducer("out", gridOptions()).Produce(ctx, work, &wg, []string{"a.ply"})
	_, ok := <-work
	assert.False(t, ok)
}

func TestStandardConsumerWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	input := writeCloud(t, dir, "scan.ply", 1)
	out := filepath.Join(dir, "out")

	consumer := NewStandardConsumer(nil, offset_elevation_corrector.NewOffsetElevationCorrector(1), nil)
	errs := runUnits(t, consumer, NewStandardProducer(out, gridOptions()), []string{input})
	require.Empty(t, errs)

	surfaceCloud, err := ply.ReadPointCloudFile(filepath.Join(out, "scan", SurfaceFileName))
	require.NoError(t, err)
	// heights are corrected by +1 and quantized with a 0.5 step
	assert.Equal(t, []geometry.Point3{{X: 0, Y: 0, Z: 2}, {X: 1, Y: 0, Z: 3}, {X: 0, Y: 1, Z: 4}}, surfaceCloud.Points)
	assert.Equal(t, []uint8{10, 20, 30}, surfaceCloud.Intensity)

	meshCloud, err := ply.ReadPointCloudFile(filepath.Join(out, "scan", MeshFileName))
	require.NoError(t, err)
	assert.Equal(t, 3, meshCloud.Len())

	file, err := os.Open(filepath.Join(out, "scan", HeightmapFileName))
	require.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
}

func TestStandardConsumerMergesFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeCloud(t, dir, "a.ply", 0), writeCloud(t, dir, "b.ply", 2)}
	out := filepath.Join(dir, "out")

	opts := gridOptions()
	opts.Mode = sampler.Max
	errs := runUnits(t, NewStandardConsumer(nil, nil, nil), NewStandardMergeProducer(out, opts), files)
	require.Empty(t, errs)

	surfaceCloud, err := ply.ReadPointCloudFile(filepath.Join(out, MergedSurfaceName, SurfaceFileName))
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point3{{X: 0, Y: 0, Z: 2}, {X: 1, Y: 0, Z: 3}, {X: 0, Y: 1, Z: 4}}, surfaceCloud.Points)
}

func TestStandardConsumerTransform(t *testing.T) {
	dir := t.TempDir()
	input := writeCloud(t, dir, "scan.ply", 1)
	out := filepath.Join(dir, "out")

	opts := gridOptions()
	opts.Command = pipeline.CommandTransform
	matrix := geometry.Translation(0, 0, 5)
	opts.Matrix = &matrix

	errs := runUnits(t, NewStandardConsumer(nil, nil, nil), NewStandardProducer(out, opts), []string{input})
	require.Empty(t, errs)

	surfaceCloud, err := ply.ReadPointCloudFile(filepath.Join(out, "scan", SurfaceFileName))
	require.NoError(t, err)
	require.Equal(t, 3, surfaceCloud.Len())
	for _, p := range surfaceCloud.Points {
		assert.GreaterOrEqual(t, p.Z, float32(5.9))
		assert.LessOrEqual(t, p.Z, float32(8.1))
	}
}

func TestStandardConsumerReportsErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeCloud(t, dir, "good.ply", 0)
	out := filepath.Join(dir, "out")

	errs := runUnits(t, NewStandardConsumer(nil, nil, nil), NewStandardProducer(out, gridOptions()),
		[]string{filepath.Join(dir, "missing.ply"), good})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "missing")

	_, err := os.Stat(filepath.Join(out, "good", SurfaceFileName))
	assert.NoError(t, err)
}

func TestSurfaceVerticesSkipsOverflowingHeights(t *testing.T) {
	scaling := surface.Scaling{XScale: 1, YScale: 1, ZScale: 1e37}

	s, err := surface.New(surface.HeightGrid, 2, 1, []int16{100, 200}, nil, scaling)
	require.NoError(t, err)
	require.Equal(t, 2, s.ValidCount())
	assert.Empty(t, surfaceVertices(s, colormap.Color))

	s, err = surface.New(surface.HeightGrid, 2, 2, []int16{0, 0, 0, 100}, []uint8{1, 2, 3, 4}, scaling)
	require.NoError(t, err)
	vertices := surfaceVertices(s, colormap.Color)
	require.Len(t, vertices, 3)
	assert.Equal(t, uint8(3), vertices[2].Intensity)

	path := filepath.Join(t.TempDir(), MeshFileName)
	require.NoError(t, NewStandardConsumer(nil, nil, nil).writeMeshPlyFile(context.Background(), s, path))
	meshCloud, err := ply.ReadPointCloudFile(path)
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point3{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, meshCloud.Points)
}
