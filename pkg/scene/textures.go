package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// NewTextureScene creates a row of spheres and quads showing every texture kind
func NewTextureScene() (*Scene, View) {
	s := New()

	// Procedural image buffers stand in for decoded files
	checkerPixels := material.NewCheckerboardImage(256, 256, 32, [3]byte{230, 230, 230}, [3]byte{51, 51, 204})
	gradientPixels := material.NewGradientImage(256, 256, core.NewVec3(1.0, 0.2, 0.2), core.NewVec3(0.2, 1.0, 0.2))

	white := s.AddTexture("White", ColorTexture{Color: core.NewVec3(0.9, 0.9, 0.9)})
	grey := s.AddTexture("Grey", ColorTexture{Color: core.NewVec3(0.3, 0.3, 0.3)})
	checker := s.AddTexture("Checker", CheckerTexture{Scale: 0.05, Even: white, Odd: grey})
	marble := s.AddTexture("Marble", PerlinTexture{Scale: 4, Seed: 42})
	uv := s.AddTexture("UV", UVDebugTexture{})
	checkerImage := s.AddTexture("Checker image", ImageTexture{Width: 256, Height: 256, Pixels: checkerPixels})
	gradientImage := s.AddTexture("Gradient image", ImageTexture{Width: 256, Height: 256, Pixels: gradientPixels})

	floor := s.AddMaterial("Floor", DiffuseMaterial{Albedo: checker})
	marbleMat := s.AddMaterial("Marble", DiffuseMaterial{Albedo: marble})
	uvMat := s.AddMaterial("UV debug", DiffuseMaterial{Albedo: uv})
	checkerImageMat := s.AddMaterial("Checker image", DiffuseMaterial{Albedo: checkerImage})
	gradientMetal := s.AddMaterial("Gradient metal", MetallicMaterial{Albedo: gradientImage, Roughness: 0.2})
	normals := s.AddMaterial("Normals", DebugNormalMaterial{})
	lamp := s.AddMaterial("Lamp", EmissiveMaterial{Tint: core.Splat(4)})

	objects := []ObjectID{
		addGroundQuad(s, "Floor", core.NewVec3(0, 0, 0), 40, floor),
		s.AddObject("Marble sphere", SphereShape{Center: core.NewVec3(-3, 1, 0), Radius: 1, Material: marbleMat}),
		s.AddObject("UV sphere", SphereShape{Center: core.NewVec3(0, 1, 0), Radius: 1, Material: uvMat}),
		s.AddObject("Image sphere", SphereShape{Center: core.NewVec3(3, 1, 0), Radius: 1, Material: checkerImageMat}),
		s.AddObject("Gradient panel", QuadShape{
			Q: core.NewVec3(-2, 0.2, -3), U: core.NewVec3(4, 0, 0), V: core.NewVec3(0, 2.5, 0), Material: gradientMetal,
		}),
		s.AddObject("Normal disk", DiskShape{
			Q: core.NewVec3(4, 0.2, -3), U: core.NewVec3(2, 0, 1), V: core.NewVec3(0, 2, 0), Material: normals,
		}),
		s.AddObject("Lamp", QuadShape{
			Q: core.NewVec3(-3, 6, -1), U: core.NewVec3(6, 0, 0), V: core.NewVec3(0, 0, 2), Material: lamp,
		}),
	}

	for _, id := range objects {
		_ = s.AddToWorld(id)
	}

	return s, View{
		Width:         480,
		Height:        270,
		VFov:          50,
		Position:      core.NewVec3(0, 2, 10),
		LookAt:        core.NewVec3(0, 1, 0),
		Up:            core.NewVec3(0, 1, 0),
		FocusDistance: 10,
		Background:    core.NewVec3(0.5, 0.6, 0.8),
	}
}
