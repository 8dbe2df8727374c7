package material

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// SolidColor provides a uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color texture
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Value returns the solid color regardless of UV or position
func (s *SolidColor) Value(u, v float64, p core.Vec3) core.Vec3 {
	return s.Color
}

func (*SolidColor) isTexture() {}

// Checker alternates between two textures on a grid in (u, v) space.
// The pattern follows surface coordinates, not world position.
type Checker struct {
	InvScale  float64
	Even, Odd Texture
}

// NewChecker creates a checker with cells of the given size in UV units
func NewChecker(scale float64, even, odd Texture) *Checker {
	return &Checker{InvScale: 1.0 / scale, Even: even, Odd: odd}
}

// NewCheckerColors creates a checker from two solid colors
func NewCheckerColors(scale float64, even, odd core.Vec3) *Checker {
	return NewChecker(scale, NewSolidColor(even), NewSolidColor(odd))
}

// Value selects the even or odd texture from the parity of the cell index
func (c *Checker) Value(u, v float64, p core.Vec3) core.Vec3 {
	xInt := int(math.Floor(c.InvScale * u))
	yInt := int(math.Floor(c.InvScale * v))

	if (xInt+yInt)%2 == 0 {
		return c.Even.Value(u, v, p)
	}
	return c.Odd.Value(u, v, p)
}

func (*Checker) isTexture() {}

// UVDebug visualizes surface coordinates as red/green
type UVDebug struct{}

// NewUVDebug creates a UV debug texture
func NewUVDebug() *UVDebug {
	return &UVDebug{}
}

// Value returns (u, v, 0)
func (*UVDebug) Value(u, v float64, p core.Vec3) core.Vec3 {
	return core.NewVec3(u, v, 0)
}

func (*UVDebug) isTexture() {}
