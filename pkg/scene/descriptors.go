package scene

import (
	"fmt"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ObjectID is a stable handle to an object in a Scene. Zero is never issued.
type ObjectID int

// MaterialID is a stable handle to a material in a Scene. Zero is never issued.
type MaterialID int

// TextureID is a stable handle to a texture in a Scene. Zero means "none"
// in optional texture slots.
type TextureID int

// NoTexture leaves an optional texture slot empty
const NoTexture TextureID = 0

// Shape is the closed set of object descriptors. Children and materials
// are referenced by handle, so the arena can hold any graph; compilation
// turns it into an acyclic hittable tree.
type Shape interface {
	isShape()
}

type SphereShape struct {
	Center   core.Vec3
	Radius   float64
	Material MaterialID
}

// QuadShape is the parallelogram Q, Q+U, Q+V, Q+U+V
type QuadShape struct {
	Q, U, V  core.Vec3
	Material MaterialID
}

// DiskShape is the ellipse inscribed in the parallelogram Q, U, V
type DiskShape struct {
	Q, U, V  core.Vec3
	Material MaterialID
}

type CubeShape struct {
	A, B     core.Vec3
	Material MaterialID
}

type ListShape struct {
	Children []ObjectID
}

// VolumeShape fills a convex boundary object with a constant-density medium
type VolumeShape struct {
	Boundary ObjectID
	Density  float64
	Phase    MaterialID
}

type TranslateShape struct {
	Child  ObjectID
	Offset core.Vec3
}

// RotateShape rotates a child by Angles degrees around X, then Y, then Z
type RotateShape struct {
	Child  ObjectID
	Angles core.Vec3
}

func (SphereShape) isShape()    {}
func (QuadShape) isShape()      {}
func (DiskShape) isShape()      {}
func (CubeShape) isShape()      {}
func (ListShape) isShape()      {}
func (VolumeShape) isShape()    {}
func (TranslateShape) isShape() {}
func (RotateShape) isShape()    {}

// MaterialDesc is the closed set of material descriptors
type MaterialDesc interface {
	isMaterialDesc()
}

type DiffuseMaterial struct {
	Albedo TextureID
}

type MetallicMaterial struct {
	Albedo    TextureID
	Roughness float64
}

// TranslucentMaterial is a dielectric; a NoTexture tint is clear glass
type TranslucentMaterial struct {
	Tint            TextureID
	RefractiveIndex float64
}

// EmissiveMaterial emits Texture*Tint, or Tint alone when Texture is NoTexture
type EmissiveMaterial struct {
	Texture TextureID
	Tint    core.Vec3
}

type VolumetricMaterial struct {
	Albedo TextureID
}

type DebugNormalMaterial struct{}

func (DiffuseMaterial) isMaterialDesc()     {}
func (MetallicMaterial) isMaterialDesc()    {}
func (TranslucentMaterial) isMaterialDesc() {}
func (EmissiveMaterial) isMaterialDesc()    {}
func (VolumetricMaterial) isMaterialDesc()  {}
func (DebugNormalMaterial) isMaterialDesc() {}

// TextureDesc is the closed set of texture descriptors
type TextureDesc interface {
	isTextureDesc()
}

type ColorTexture struct {
	Color core.Vec3
}

// CheckerTexture alternates Even and Odd on a (u, v) grid of Scale-sized cells
type CheckerTexture struct {
	Scale     float64
	Even, Odd TextureID
}

// PerlinTexture is marble-like turbulence over Base (white when NoTexture).
// Seed fixes the noise tables so rebuilds are reproducible.
type PerlinTexture struct {
	Scale float64
	Base  TextureID
	Seed  int64
}

// ImageTexture holds an already-decoded width*height*3 RGB buffer
type ImageTexture struct {
	Width, Height int
	Pixels        []byte
}

type UVDebugTexture struct{}

func (ColorTexture) isTextureDesc()   {}
func (CheckerTexture) isTextureDesc() {}
func (PerlinTexture) isTextureDesc()  {}
func (ImageTexture) isTextureDesc()   {}
func (UVDebugTexture) isTextureDesc() {}

// ShapeKind returns the human readable name of a shape descriptor
func ShapeKind(shape Shape) string {
	switch shape.(type) {
	case SphereShape:
		return "Sphere"
	case QuadShape:
		return "Quad"
	case DiskShape:
		return "Disk"
	case CubeShape:
		return "Cube"
	case ListShape:
		return "List"
	case VolumeShape:
		return "Volume"
	case TranslateShape:
		return "Translate"
	case RotateShape:
		return "Rotate"
	}
	panic(fmt.Sprintf("scene: unknown shape variant %T", shape))
}

// MaterialKind returns the human readable name of a material descriptor
func MaterialKind(desc MaterialDesc) string {
	switch desc.(type) {
	case DiffuseMaterial:
		return "Diffuse"
	case MetallicMaterial:
		return "Metallic"
	case TranslucentMaterial:
		return "Translucent"
	case EmissiveMaterial:
		return "Emissive"
	case VolumetricMaterial:
		return "Volumetric"
	case DebugNormalMaterial:
		return "Debug Normal"
	}
	panic(fmt.Sprintf("scene: unknown material variant %T", desc))
}

// TextureKind returns the human readable name of a texture descriptor
func TextureKind(desc TextureDesc) string {
	switch desc.(type) {
	case ColorTexture:
		return "Color"
	case CheckerTexture:
		return "Checker"
	case PerlinTexture:
		return "Perlin"
	case ImageTexture:
		return "Image"
	case UVDebugTexture:
		return "UV Debug"
	}
	panic(fmt.Sprintf("scene: unknown texture variant %T", desc))
}
