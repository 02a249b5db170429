package ply

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ecopia-map/surface_sampler/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const asciiCloud = `ply
format ascii 1.0
comment scanner export
element vertex 3
property float x
property float y
property double z
property uchar intensity
end_header
0.5 1.25 -2 10
1 2 3 255
-1.5 0 0.125 0
`

func TestReadPointCloud(t *testing.T) {
	cloud, err := ReadPointCloud(strings.NewReader(asciiCloud))
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point3{
		{X: 0.5, Y: 1.25, Z: -2},
		{X: 1, Y: 2, Z: 3},
		{X: -1.5, Y: 0, Z: 0.125},
	}, cloud.Points)
	assert.Equal(t, []uint8{10, 255, 0}, cloud.Intensity)
}

func TestReadPointCloudWithoutIntensity(t *testing.T) {
	input := `ply
format ascii 1.0
element vertex 2
property float x
property float y
property float z
property uchar red
end_header
1 2 3 4
5 6 7 8
`
	cloud, err := ReadPointCloud(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, cloud.Len())
	assert.Nil(t, cloud.Intensity)
}

func TestReadPointCloudInvalid(t *testing.T) {
	inputs := map[string]string{
		"not a ply":    "hello\n",
		"binary":       "ply\nformat binary_little_endian 1.0\nelement vertex 0\nend_header\n",
		"bad value":    "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\nend_header\n1 two 3\n",
		"missing rows": "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n1 2 3\n",
		"missing z":    "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nend_header\n1 2\n",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := ReadPointCloud(strings.NewReader(input))
			assert.ErrorIs(t, err, ErrInvalidPly)
		})
	}
}

func TestWritePointsRoundTrip(t *testing.T) {
	vertices := []Vertex{
		{X: 0.1, Y: -2.5, Z: 1e-3, R: 1, G: 2, B: 3, Intensity: 200},
		{X: 12345.678, Y: 0, Z: -7, R: 255, Intensity: 7},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePoints(&buf, vertices, true))

	cloud, err := ReadPointCloud(&buf)
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point3{
		{X: 0.1, Y: -2.5, Z: 1e-3},
		{X: 12345.678, Y: 0, Z: -7},
	}, cloud.Points)
	assert.Equal(t, []uint8{200, 7}, cloud.Intensity)
}

func TestWriteMesh(t *testing.T) {
	vertices := []Vertex{{X: 0}, {X: 1}, {Y: 1}}

	var buf bytes.Buffer
	require.NoError(t, WriteMesh(&buf, vertices, [][3]uint32{{0, 1, 2}}, false))
	out := buf.String()
	assert.Contains(t, out, "element face 1\n")
	assert.Contains(t, out, "property list uchar uint vertex_indices\n")
	assert.True(t, strings.HasSuffix(out, "3 0 1 2\n"))

	cloud, err := ReadPointCloud(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 3, cloud.Len())

	err = WriteMesh(&buf, vertices, [][3]uint32{{0, 1, 3}}, false)
	assert.Error(t, err)
}

func TestPlyFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.ply")

	require.NoError(t, WritePlyFile(path, []Vertex{{X: 1, Y: 2, Z: 3}}, false))
	cloud, err := ReadPointCloudFile(path)
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point3{{X: 1, Y: 2, Z: 3}}, cloud.Points)

	meshPath := filepath.Join(dir, "mesh.ply")
	require.NoError(t, WriteMeshPlyFile(meshPath, []Vertex{{}, {X: 1}, {Y: 1}}, [][3]uint32{{0, 1, 2}}, true))
	cloud, err = ReadPointCloudFile(meshPath)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0}, cloud.Intensity)

	_, err = ReadPointCloudFile(filepath.Join(dir, "missing.ply"))
	assert.Error(t, err)
}
