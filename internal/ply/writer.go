package ply

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Contains a single vertex of a PLY file with its color and intensity
type Vertex struct {
	X, Y, Z   float32
	R, G, B   uint8
	Intensity uint8
}

// WritePoints writes the vertices as an ASCII PLY point cloud. The intensity property is written
// only if withIntensity is true.
func WritePoints(w io.Writer, vertices []Vertex, withIntensity bool) error {
	return writePly(w, vertices, nil, withIntensity)
}

// WriteMesh writes the vertices and the triangles indexing them as an ASCII PLY mesh
func WriteMesh(w io.Writer, vertices []Vertex, faces [][3]uint32, withIntensity bool) error {
	for i, face := range faces {
		for _, index := range face {
			if int(index) >= len(vertices) {
				return fmt.Errorf("ply: face %d references vertex %d of %d", i, index, len(vertices))
			}
		}
	}
	return writePly(w, vertices, faces, withIntensity)
}

// Writes a PLY point cloud at the given path
func WritePlyFile(filePath string, vertices []Vertex, withIntensity bool) error {
	return writeFile(filePath, func(w io.Writer) error {
		return WritePoints(w, vertices, withIntensity)
	})
}

// Writes a PLY mesh at the given path
func WriteMeshPlyFile(filePath string, vertices []Vertex, faces [][3]uint32, withIntensity bool) error {
	return writeFile(filePath, func(w io.Writer) error {
		return WriteMesh(w, vertices, faces, withIntensity)
	})
}

func writeFile(filePath string, write func(io.Writer) error) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writePly(w io.Writer, vertices []Vertex, faces [][3]uint32, withIntensity bool) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintln(bw, "comment generated by surface_sampler")
	fmt.Fprintf(bw, "element vertex %d\n", len(vertices))
	fmt.Fprintln(bw, "property float x")
	fmt.Fprintln(bw, "property float y")
	fmt.Fprintln(bw, "property float z")
	fmt.Fprintln(bw, "property uchar red")
	fmt.Fprintln(bw, "property uchar green")
	fmt.Fprintln(bw, "property uchar blue")
	if withIntensity {
		fmt.Fprintln(bw, "property uchar intensity")
	}
	if faces != nil {
		fmt.Fprintf(bw, "element face %d\n", len(faces))
		fmt.Fprintln(bw, "property list uchar uint vertex_indices")
	}
	fmt.Fprintln(bw, "end_header")

	line := make([]byte, 0, 96)
	for _, v := range vertices {
		line = line[:0]
		line = strconv.AppendFloat(line, float64(v.X), 'g', -1, 32)
		line = append(line, ' ')
		line = strconv.AppendFloat(line, float64(v.Y), 'g', -1, 32)
		line = append(line, ' ')
		line = strconv.AppendFloat(line, float64(v.Z), 'g', -1, 32)
		for _, c := range [...]uint8{v.R, v.G, v.B} {
			line = append(line, ' ')
			line = strconv.AppendUint(line, uint64(c), 10)
		}
		if withIntensity {
			line = append(line, ' ')
			line = strconv.AppendUint(line, uint64(v.Intensity), 10)
		}
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}

	for _, face := range faces {
		if _, err := fmt.Fprintf(bw, "3 %d %d %d\n", face[0], face[1], face[2]); err != nil {
			return err
		}
	}

	return bw.Flush()
}
