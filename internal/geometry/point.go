package geometry

import (
	"math"
	"runtime"
	"sync"

	"github.com/golang/geo/r3"
)

// Point3 is a single sample in sensor space. Z may be +Inf or NaN when the
// sensor produced no return for the sample.
type Point3 struct {
	X float32
	Y float32
	Z float32
}

// Size3 holds the extents of a BoundingBox along each axis
type Size3 struct {
	Width  float32
	Height float32
	Depth  float32
}

// BoundingBox is an axis aligned box expressed by its center and its size
type BoundingBox struct {
	Center Point3
	Size   Size3
}

// minimum number of points a partition must hold before work is split across goroutines
const parallelPartitionSize = 1 << 14

// Returns true if all the coordinates of the point are finite numbers
func (p Point3) IsFinite() bool {
	return isFinite32(p.X) && isFinite32(p.Y) && isFinite32(p.Z)
}

func (p Point3) Vector() r3.Vector {
	return r3.Vector{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
}

func PointFromVector(v r3.Vector) Point3 {
	return Point3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// Min returns the lowest corner of the box
func (b BoundingBox) Min() Point3 {
	return Point3{
		X: b.Center.X - b.Size.Width/2,
		Y: b.Center.Y - b.Size.Height/2,
		Z: b.Center.Z - b.Size.Depth/2,
	}
}

// Max returns the highest corner of the box
func (b BoundingBox) Max() Point3 {
	return Point3{
		X: b.Center.X + b.Size.Width/2,
		Y: b.Center.Y + b.Size.Height/2,
		Z: b.Center.Z + b.Size.Depth/2,
	}
}

// NewBoundingBoxFromCorners builds a box spanning the two given corners
func NewBoundingBoxFromCorners(min, max r3.Vector) BoundingBox {
	center := min.Add(max).Mul(0.5)
	size := max.Sub(min)
	return BoundingBox{
		Center: PointFromVector(center),
		Size:   Size3{Width: float32(size.X), Height: float32(size.Y), Depth: float32(size.Z)},
	}
}

// extent accumulates the min and max corners over a set of points
type extent struct {
	min   r3.Vector
	max   r3.Vector
	count int
}

func newExtent() extent {
	inf := math.Inf(1)
	return extent{
		min: r3.Vector{X: inf, Y: inf, Z: inf},
		max: r3.Vector{X: -inf, Y: -inf, Z: -inf},
	}
}

func (e *extent) add(p Point3) {
	if !p.IsFinite() {
		return
	}
	v := p.Vector()
	e.min = r3.Vector{X: math.Min(e.min.X, v.X), Y: math.Min(e.min.Y, v.Y), Z: math.Min(e.min.Z, v.Z)}
	e.max = r3.Vector{X: math.Max(e.max.X, v.X), Y: math.Max(e.max.Y, v.Y), Z: math.Max(e.max.Z, v.Z)}
	e.count++
}

func (e *extent) merge(o extent) {
	if o.count == 0 {
		return
	}
	e.min = r3.Vector{X: math.Min(e.min.X, o.min.X), Y: math.Min(e.min.Y, o.min.Y), Z: math.Min(e.min.Z, o.min.Z)}
	e.max = r3.Vector{X: math.Max(e.max.X, o.max.X), Y: math.Max(e.max.Y, o.max.Y), Z: math.Max(e.max.Z, o.max.Z)}
	e.count += o.count
}

// ComputeBoundingBox returns the box enclosing all the points having finite coordinates.
// The second return value is false if no such point exists.
// Large inputs are split in partitions, each one reduced by its own goroutine.
func ComputeBoundingBox(points []Point3) (BoundingBox, bool) {
	partitions := runtime.NumCPU()
	if len(points) < parallelPartitionSize*2 || partitions < 2 {
		e := newExtent()
		for _, p := range points {
			e.add(p)
		}
		return e.box()
	}

	chunk := (len(points) + partitions - 1) / partitions
	extents := make([]extent, partitions)

	var waitGroup sync.WaitGroup
	for i := 0; i < partitions; i++ {
		lo := i * chunk
		hi := lo + chunk
		if hi > len(points) {
			hi = len(points)
		}
		extents[i] = newExtent()
		if lo >= hi {
			continue
		}
		waitGroup.Add(1)
		go func(e *extent, part []Point3) {
			defer waitGroup.Done()
			for _, p := range part {
				e.add(p)
			}
		}(&extents[i], points[lo:hi])
	}
	waitGroup.Wait()

	total := newExtent()
	for _, e := range extents {
		total.merge(e)
	}
	return total.box()
}

func (e extent) box() (BoundingBox, bool) {
	if e.count == 0 {
		return BoundingBox{}, false
	}
	return NewBoundingBoxFromCorners(e.min, e.max), true
}

// Center returns the arithmetic mean of the finite points. When none is available
// every coordinate of the result is -Inf and ok is false.
func Center(points []Point3) (center Point3, ok bool) {
	var sum r3.Vector
	count := 0
	for _, p := range points {
		if !p.IsFinite() {
			continue
		}
		sum = sum.Add(p.Vector())
		count++
	}
	if count == 0 {
		inf := float32(math.Inf(-1))
		return Point3{X: inf, Y: inf, Z: inf}, false
	}
	return PointFromVector(sum.Mul(1 / float64(count))), true
}

func isFinite32(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
