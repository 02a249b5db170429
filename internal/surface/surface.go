package surface

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/ecopia-map/surface_sampler/internal/geometry"
	"go.uber.org/multierr"
)

// ErrInvalidArgument is the root of every argument validation error of the toolkit
var ErrInvalidArgument = errors.New("invalid argument")

// Invalid is the raw code marking a missing sample. It decodes to +Inf.
const Invalid int16 = math.MinInt16

type Kind string

const (
	HeightGrid     Kind = "HEIGHT_GRID"      // one raw z per cell, x and y implied by the cell position
	PointCloudGrid Kind = "POINT_CLOUD_GRID" // three raw values per cell, x y z interleaved
)

func (k Kind) String() string {
	return string(k)
}

// Channels returns how many raw values each cell holds
func (k Kind) Channels() int {
	if k == PointCloudGrid {
		return 3
	}
	return 1
}

// Scaling maps raw int16 codes to world coordinates as offset + raw*scale
type Scaling struct {
	XOffset float32
	YOffset float32
	ZOffset float32
	XScale  float32
	YScale  float32
	ZScale  float32
}

// Surface is a quantized regular grid of samples stored in row-major order,
// the cell (col, row) having index row*Width + col.
type Surface struct {
	Kind      Kind
	Width     int
	Length    int
	Data      []int16
	Intensity []uint8 // empty or one value per cell
	Scaling

	resources []io.Closer
	sync.Mutex
}

// New validates the given buffers and wraps them in a Surface. The buffers are not copied.
func New(kind Kind, width, length int, data []int16, intensity []uint8, scaling Scaling) (*Surface, error) {
	s := &Surface{
		Kind:      kind,
		Width:     width,
		Length:    length,
		Data:      data,
		Intensity: intensity,
		Scaling:   scaling,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewFromRaw is like New but copies the buffers, so the caller may reuse them (e.g. a sensor frame buffer)
func NewFromRaw(kind Kind, width, length int, data []int16, intensity []uint8, scaling Scaling) (*Surface, error) {
	var intensityCopy []uint8
	if len(intensity) > 0 {
		intensityCopy = append([]uint8(nil), intensity...)
	}
	return New(kind, width, length, append([]int16(nil), data...), intensityCopy, scaling)
}

// Validate checks dimensions, scales and buffer lengths
func (s *Surface) Validate() error {
	if s.Kind != HeightGrid && s.Kind != PointCloudGrid {
		return fmt.Errorf("%w: unknown surface kind %q", ErrInvalidArgument, s.Kind)
	}
	if s.Width <= 0 || s.Length <= 0 {
		return fmt.Errorf("%w: surface dimensions must be positive, got %dx%d", ErrInvalidArgument, s.Width, s.Length)
	}
	if err := s.Scaling.Validate(); err != nil {
		return err
	}
	cells := s.Width * s.Length
	if len(s.Data) != cells*s.Kind.Channels() {
		return fmt.Errorf("%w: data length %d does not match %dx%dx%d", ErrInvalidArgument, len(s.Data), s.Width, s.Length, s.Kind.Channels())
	}
	if len(s.Intensity) != 0 && len(s.Intensity) != cells {
		return fmt.Errorf("%w: intensity length %d does not match %d cells", ErrInvalidArgument, len(s.Intensity), cells)
	}
	return nil
}

// Validate checks that every scale is a finite non zero number and every offset is finite
func (sc Scaling) Validate() error {
	scales := [...]float32{sc.XScale, sc.YScale, sc.ZScale}
	for i, v := range scales {
		if v == 0 || !isFinite(v) {
			return fmt.Errorf("%w: scale %c must be finite and non zero, got %v", ErrInvalidArgument, "XYZ"[i], v)
		}
	}
	offsets := [...]float32{sc.XOffset, sc.YOffset, sc.ZOffset}
	for i, v := range offsets {
		if !isFinite(v) {
			return fmt.Errorf("%w: offset %c must be finite, got %v", ErrInvalidArgument, "XYZ"[i], v)
		}
	}
	return nil
}

func (sc Scaling) DecodeX(raw int16) float32 {
	return decode(raw, sc.XOffset, sc.XScale)
}

func (sc Scaling) DecodeY(raw int16) float32 {
	return decode(raw, sc.YOffset, sc.YScale)
}

func (sc Scaling) DecodeZ(raw int16) float32 {
	return decode(raw, sc.ZOffset, sc.ZScale)
}

// ColumnX returns the world x of the cells in the given column of a height grid
func (sc Scaling) ColumnX(col int) float32 {
	return sc.XOffset + float32(col)*sc.XScale
}

// RowY returns the world y of the cells in the given row of a height grid
func (sc Scaling) RowY(row int) float32 {
	return sc.YOffset + float32(row)*sc.YScale
}

func decode(raw int16, offset, scale float32) float32 {
	if raw == Invalid {
		return float32(math.Inf(1))
	}
	return offset + float32(raw)*scale
}

func (s *Surface) Cells() int {
	return s.Width * s.Length
}

func (s *Surface) HasIntensity() bool {
	return len(s.Intensity) != 0
}

// IsValid reports whether the cell holds a sample on every channel
func (s *Surface) IsValid(cell int) bool {
	channels := s.Kind.Channels()
	for c := 0; c < channels; c++ {
		if s.Data[cell*channels+c] == Invalid {
			return false
		}
	}
	return true
}

// Point decodes the cell at the given linear index
func (s *Surface) Point(cell int) geometry.Point3 {
	if s.Kind == PointCloudGrid {
		base := cell * 3
		return geometry.Point3{
			X: s.DecodeX(s.Data[base]),
			Y: s.DecodeY(s.Data[base+1]),
			Z: s.DecodeZ(s.Data[base+2]),
		}
	}
	return geometry.Point3{
		X: s.ColumnX(cell % s.Width),
		Y: s.RowY(cell / s.Width),
		Z: s.DecodeZ(s.Data[cell]),
	}
}

// At decodes the cell (col, row). The second return value is false if the cell is
// out of bounds or holds an invalid sample.
func (s *Surface) At(col, row int) (geometry.Point3, bool) {
	if col < 0 || row < 0 || col >= s.Width || row >= s.Length {
		return geometry.Point3{}, false
	}
	cell := row*s.Width + col
	return s.Point(cell), s.IsValid(cell)
}

// ToPoints decodes every cell of the surface, invalid cells included, in row-major order
func (s *Surface) ToPoints() []geometry.Point3 {
	points := make([]geometry.Point3, s.Cells())
	for i := range points {
		points[i] = s.Point(i)
	}
	return points
}

// ValidCount returns the number of cells holding a sample
func (s *Surface) ValidCount() int {
	count := 0
	for i := 0; i < s.Cells(); i++ {
		if s.IsValid(i) {
			count++
		}
	}
	return count
}

// BoundingBox returns the box enclosing the valid samples, false if there is none
func (s *Surface) BoundingBox() (geometry.BoundingBox, bool) {
	return geometry.ComputeBoundingBox(s.ToPoints())
}

// AttachResource binds a resource, such as a device buffer, to the lifetime of the surface
func (s *Surface) AttachResource(r io.Closer) {
	s.Lock()
	defer s.Unlock()
	s.resources = append(s.resources, r)
}

// Dispose releases the sample buffers and every attached resource. Calling it more than once is a no-op.
func (s *Surface) Dispose() error {
	s.Lock()
	defer s.Unlock()

	var err error
	for _, r := range s.resources {
		err = multierr.Append(err, r.Close())
	}
	s.resources = nil
	s.Data = nil
	s.Intensity = nil
	s.Width = 0
	s.Length = 0
	return err
}

func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
