package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

var (
	missingImageColor = core.NewVec3(0, 1, 1) // cyan: no image attached
	missingPixelColor = core.NewVec3(1, 0, 1) // magenta: pixel data shorter than declared size
)

// Image provides color from a pre-decoded 8-bit RGB bitmap
type Image struct {
	Width  int
	Height int
	Pixels []byte // Row-major RGB triplets, top row first
}

// NewImage creates a new image texture. The pixel slice is not copied.
func NewImage(width, height int, pixels []byte) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Value samples the texture at (u, v) using nearest-neighbor filtering.
// Coordinates are clamped to [0,1] and v is flipped so v=0 is the bottom row.
func (t *Image) Value(u, v float64, p core.Vec3) core.Vec3 {
	if t.Height <= 0 || t.Width <= 0 {
		return missingImageColor
	}

	unit := core.NewInterval(0, 1)
	u = unit.Clamp(u)
	v = 1.0 - unit.Clamp(v)

	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)

	offset := (y*t.Width + x) * 3
	if offset+2 >= len(t.Pixels) {
		return missingPixelColor
	}

	const colorScale = 1.0 / 255.0
	return core.NewVec3(
		colorScale*float64(t.Pixels[offset]),
		colorScale*float64(t.Pixels[offset+1]),
		colorScale*float64(t.Pixels[offset+2]),
	)
}

func (*Image) isTexture() {}
