package material

import (
	"math"
	"math/rand"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// marbleTurbulenceDepth is the number of noise octaves in the marble veins
const marbleTurbulenceDepth = 7

// Marble is a Perlin turbulence texture that modulates a base texture
type Marble struct {
	Scale float64
	Base  Texture
	noise *Perlin
}

// NewMarble creates a marble texture with its own noise tables
func NewMarble(scale float64, base Texture, random *rand.Rand) *Marble {
	return &Marble{Scale: scale, Base: base, noise: NewPerlin(random)}
}

// Value returns 0.5*(1 + sin(scale*z + 10*turbulence(p))) times the base color
func (m *Marble) Value(u, v float64, p core.Vec3) core.Vec3 {
	phase := m.Scale*p.Z + 10*m.noise.Turbulence(p, marbleTurbulenceDepth)
	return m.Base.Value(u, v, p).Multiply(0.5 * (1 + math.Sin(phase)))
}

func (*Marble) isTexture() {}

// NewCheckerboardImage renders a checkerboard into an RGB byte buffer
func NewCheckerboardImage(width, height, checkSize int, color1, color2 [3]byte) []byte {
	pixels := make([]byte, width*height*3)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			color := color1
			if (x/checkSize+y/checkSize)%2 != 0 {
				color = color2
			}
			copy(pixels[(y*width+x)*3:], color[:])
		}
	}

	return pixels
}

// NewGradientImage renders a vertical gradient from top to bottom into an RGB byte buffer
func NewGradientImage(width, height int, top, bottom core.Vec3) []byte {
	pixels := make([]byte, width*height*3)

	for y := 0; y < height; y++ {
		t := 0.0
		if height > 1 {
			t = float64(y) / float64(height-1)
		}
		color := top.Multiply(1.0 - t).Add(bottom.Multiply(t))
		r, g, b := toByte(color.X), toByte(color.Y), toByte(color.Z)

		for x := 0; x < width; x++ {
			offset := (y*width + x) * 3
			pixels[offset], pixels[offset+1], pixels[offset+2] = r, g, b
		}
	}

	return pixels
}

func toByte(c float64) byte {
	return byte(255.999 * core.Clamp(c, 0, 1))
}
