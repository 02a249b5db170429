package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ecopia-map/surface_sampler/internal/geometry"
	"github.com/ecopia-map/surface_sampler/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatrix(t *testing.T) {
	m, err := ParseMatrix("1,0,0,2, 0,1,0,3, 0,0,1,4, 0,0,0,1")
	require.NoError(t, err)
	assert.Equal(t, geometry.Translation(2, 3, 4), *m)

	m, err = ParseMatrix("1 0 0 0;0 1 0 0;0 0 1 0;0 0 0 1")
	require.NoError(t, err)
	assert.Equal(t, geometry.Identity(), *m)

	_, err = ParseMatrix("1,2,3")
	assert.Error(t, err)
	_, err = ParseMatrix("1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,x")
	assert.Error(t, err)
}

func TestIsFloatEqual(t *testing.T) {
	assert.True(t, IsFloatEqual(0.1, 0.1000001))
	assert.False(t, IsFloatEqual(-1, 0))
	assert.False(t, IsFloatEqual(0, 1))
}

func TestGetFilenameWithoutExtension(t *testing.T) {
	assert.Equal(t, "scan_01", GetFilenameWithoutExtension(filepath.Join("data", "scan_01.ply")))
	assert.Equal(t, "scan", GetFilenameWithoutExtension("scan"))
}

func TestFormatOutput(t *testing.T) {
	DisableLoggerTimestamp()
	defer EnableLoggerTimestamp()
	assert.Equal(t, "> done 3", formatOutput("> done", 3))

	EnableLoggerTimestamp()
	assert.True(t, strings.HasSuffix(formatOutput("done"), "] done"))
}

func writeEmptyFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0777))
		require.NoError(t, os.WriteFile(path, nil, 0666))
	}
}

func TestStandardFileFinder(t *testing.T) {
	root := t.TempDir()
	writeEmptyFiles(t, root, "b.ply", "a.PLY", "notes.txt", filepath.Join("nested", "c.ply"))

	finder := NewStandardFileFinder()

	files, err := finder.GetPlyFilesToProcess(&pipeline.Options{Input: "single.ply"})
	require.NoError(t, err)
	assert.Equal(t, []string{"single.ply"}, files)

	files, err = finder.GetPlyFilesToProcess(&pipeline.Options{Input: root, FolderProcessing: true})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.PLY"), filepath.Join(root, "b.ply")}, files)

	files, err = finder.GetPlyFilesToMerge(&pipeline.Options{Input: root, Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.PLY"),
		filepath.Join(root, "b.ply"),
		filepath.Join(root, "nested", "c.ply"),
	}, files)

	files, err = finder.GetPlyFilesToMerge(&pipeline.Options{Input: filepath.Join(root, "b.ply")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b.ply")}, files)

	_, err = finder.GetPlyFilesToMerge(&pipeline.Options{Input: filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestParseFlagsForCommandSample(t *testing.T) {
	flags, err := ParseFlagsForCommandSample([]string{
		"-i", "in.ply", "-output", "out", "-fit=false", "-w", "20", "-height", "10",
		"-mode", "max", "-fill-holes", "3", "-matrix", "1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,1",
	})
	require.NoError(t, err)
	assert.Equal(t, "in.ply", *flags.Input)
	assert.Equal(t, "out", *flags.Output)
	assert.False(t, *flags.Fit)
	assert.Equal(t, 20, *flags.Width)
	assert.Equal(t, 10, *flags.Height)
	assert.Equal(t, "max", *flags.Mode)
	assert.Equal(t, 3, *flags.FillHoles)
	assert.Equal(t, 0.01, *flags.XScale)
	assert.Equal(t, "color", *flags.ColorMode)
	assert.False(t, *flags.FolderProcessing)
	assert.NotEmpty(t, *flags.Matrix)

	_, err = ParseFlagsForCommandSample([]string{"-unknown"})
	assert.Error(t, err)
}

func TestParseFlagsForCommandMerge(t *testing.T) {
	flags, err := ParseFlagsForCommandMerge([]string{"-i", "folder", "-r"})
	require.NoError(t, err)
	assert.True(t, *flags.FolderProcessing)
	assert.True(t, *flags.RecursiveFolderProcessing)
	assert.True(t, *flags.Fit)
}

func TestParseFlagsForCommandTransform(t *testing.T) {
	flags, err := ParseFlagsForCommandTransform([]string{"-i", "in.ply", "-matrix", "m", "-xscale", "0.5", "-z", "1.5"})
	require.NoError(t, err)
	assert.Equal(t, "m", *flags.Matrix)
	assert.Equal(t, 0.5, *flags.XScale)
	assert.Equal(t, 1.5, *flags.ElevationOffset)
}
