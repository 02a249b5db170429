package colormap

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/ecopia-map/surface_sampler/internal/surface"
)

// Heightmap renders one pixel per cell of s, row 0 at the top of the image
func Heightmap(s *surface.Surface, mode Mode) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Length))

	zMin, zMax, ok := HeightRange(s)
	if !ok {
		// every cell is invalid, the image stays black
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xff
		}
		return img
	}

	colors := ShadeSurface(s, zMin, zMax, mode)
	for cell, c := range colors {
		r, g, b := c.Clamped().RGB255()
		img.SetNRGBA(cell%s.Width, cell/s.Width, color.NRGBA{R: r, G: g, B: b, A: 0xff})
	}
	return img
}

// WriteHeightmapPNG encodes the heightmap of s as a PNG image
func WriteHeightmapPNG(w io.Writer, s *surface.Surface, mode Mode) error {
	if s == nil || s.Cells() == 0 {
		return fmt.Errorf("%w: empty surface", surface.ErrInvalidArgument)
	}
	return png.Encode(w, Heightmap(s, mode))
}
