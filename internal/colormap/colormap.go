package colormap

import (
	"math"
	"strings"

	"github.com/ecopia-map/surface_sampler/internal/surface"
	"github.com/lucasb-eyer/go-colorful"
)

type Mode string

const (
	Color              Mode = "COLOR"                // height ramp only
	Intensity          Mode = "INTENSITY"            // gray level from the intensity channel
	ColorWithIntensity Mode = "COLOR_WITH_INTENSITY" // height ramp modulated by intensity
)

func (m Mode) String() string {
	return string(m)
}

func ParseMode(value string) Mode {
	normalizedValue := strings.ReplaceAll(strings.Trim(strings.ToUpper(value), " "), "-", "_")
	switch normalizedValue {
	case "COLOR":
		return Color
	case "INTENSITY":
		return Intensity
	case "COLOR_WITH_INTENSITY":
		return ColorWithIntensity
	}
	return ""
}

var black = colorful.Color{}

// GetColorByHeight maps z on a seven band ramp going from dark blue at zMin through
// cyan, green, yellow, red and magenta to white at zMax. z is clamped to [zMin, zMax].
// The caller must ensure zMax != zMin.
func GetColorByHeight(z, zMin, zMax float64) colorful.Color {
	z = math.Max(zMin, math.Min(zMax, z))
	// band position in [0, 7], bands are unit wide
	s := 7 * (z - zMin) / (zMax - zMin)

	switch {
	case s < 1:
		return colorful.Color{R: 0, G: 0, B: unit(0.5 + s/2)}
	case s < 2:
		return colorful.Color{R: 0, G: unit(s - 1), B: 1}
	case s < 3:
		return colorful.Color{R: 0, G: 1, B: unit(3 - s)}
	case s < 4:
		return colorful.Color{R: unit(s - 3), G: 1, B: 0}
	case s < 5:
		return colorful.Color{R: 1, G: unit(5 - s), B: 0}
	case s < 6:
		return colorful.Color{R: 1, G: 0, B: unit(s - 5)}
	default:
		return colorful.Color{R: 1, G: unit(s - 6), B: 1}
	}
}

func unit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// HeightRange returns the lowest and highest decoded height of the valid cells
func HeightRange(s *surface.Surface) (zMin, zMax float32, ok bool) {
	box, ok := s.BoundingBox()
	if !ok {
		return 0, 0, false
	}
	return box.Min().Z, box.Max().Z, true
}

// ShadeSurface returns one color per cell of s. Invalid cells are black. When the surface has
// no intensity channel the intensity factor is 1. A flat range maps every valid cell to the
// lowest color of the ramp.
func ShadeSurface(s *surface.Surface, zMin, zMax float32, mode Mode) []colorful.Color {
	colors := make([]colorful.Color, s.Cells())
	flat := zMax == zMin

	for cell := range colors {
		if !s.IsValid(cell) {
			colors[cell] = black
			continue
		}

		factor := 1.0
		if s.HasIntensity() {
			factor = float64(s.Intensity[cell]) / 255
		}

		if mode == Intensity {
			colors[cell] = colorful.Color{R: factor, G: factor, B: factor}
			continue
		}

		var c colorful.Color
		if flat {
			c = GetColorByHeight(0, 0, 1)
		} else {
			c = GetColorByHeight(float64(s.Point(cell).Z), float64(zMin), float64(zMax))
		}
		if mode == ColorWithIntensity {
			c = colorful.Color{R: c.R * factor, G: c.G * factor, B: c.B * factor}.Clamped()
		}
		colors[cell] = c
	}
	return colors
}
