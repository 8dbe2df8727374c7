package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// addGroundQuad adds a large horizontal quad centered at center with its
// normal pointing up: (size,0,0) x (0,0,-size) = (0,size²,0)
func addGroundQuad(s *Scene, name string, center core.Vec3, size float64, mat MaterialID) ObjectID {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z+size/2)
	return s.AddObject(name, QuadShape{
		Q:        corner,
		U:        core.NewVec3(size, 0, 0),
		V:        core.NewVec3(0, 0, -size),
		Material: mat,
	})
}

// NewDefaultScene creates spheres of every surface kind on a checker ground
// under a blue sky
func NewDefaultScene() (*Scene, View) {
	s := New()

	// Textures
	groundEven := s.AddTexture("Ground light", ColorTexture{Color: core.NewVec3(0.48, 0.48, 0.0)})
	groundOdd := s.AddTexture("Ground dark", ColorTexture{Color: core.NewVec3(0.2, 0.3, 0.1)})
	checker := s.AddTexture("Ground checker", CheckerTexture{Scale: 0.002, Even: groundEven, Odd: groundOdd})
	blue := s.AddTexture("Blue", ColorTexture{Color: core.NewVec3(0.1, 0.2, 0.5)})
	red := s.AddTexture("Red", ColorTexture{Color: core.NewVec3(0.65, 0.25, 0.2)})
	silver := s.AddTexture("Silver", ColorTexture{Color: core.NewVec3(0.8, 0.8, 0.8)})
	gold := s.AddTexture("Gold", ColorTexture{Color: core.NewVec3(0.8, 0.6, 0.2)})

	// Materials
	ground := s.AddMaterial("Ground", DiffuseMaterial{Albedo: checker})
	diffuseBlue := s.AddMaterial("Blue rough", DiffuseMaterial{Albedo: blue})
	diffuseRed := s.AddMaterial("Red rough", DiffuseMaterial{Albedo: red})
	metalSilver := s.AddMaterial("Silver", MetallicMaterial{Albedo: silver, Roughness: 0})
	metalGold := s.AddMaterial("Gold", MetallicMaterial{Albedo: gold, Roughness: 0.3})
	glass := s.AddMaterial("Glass", TranslucentMaterial{RefractiveIndex: 1.5})
	bubble := s.AddMaterial("Air bubble", TranslucentMaterial{RefractiveIndex: 1.0 / 1.5})

	objects := []ObjectID{
		addGroundQuad(s, "Ground", core.NewVec3(0, 0, -1), 1000, ground),
		s.AddObject("Center", SphereShape{Center: core.NewVec3(0, 0.5, -1), Radius: 0.5, Material: diffuseRed}),
		s.AddObject("Left", SphereShape{Center: core.NewVec3(-1, 0.5, -1), Radius: 0.5, Material: metalSilver}),
		s.AddObject("Right", SphereShape{Center: core.NewVec3(1, 0.5, -1), Radius: 0.5, Material: metalGold}),
		s.AddObject("Solid glass", SphereShape{Center: core.NewVec3(0.5, 0.25, -0.5), Radius: 0.25, Material: glass}),
	}

	// Hollow glass sphere with a blue sphere inside
	hollow := s.AddObject("Hollow glass", ListShape{Children: []ObjectID{
		s.AddObject("Hollow glass outer", SphereShape{Center: core.NewVec3(-0.5, 0.25, -0.5), Radius: 0.25, Material: glass}),
		s.AddObject("Hollow glass inner", SphereShape{Center: core.NewVec3(-0.5, 0.25, -0.5), Radius: 0.24, Material: bubble}),
		s.AddObject("Hollow glass core", SphereShape{Center: core.NewVec3(-0.5, 0.25, -0.5), Radius: 0.20, Material: diffuseBlue}),
	}})
	objects = append(objects, hollow)

	for _, id := range objects {
		_ = s.AddToWorld(id)
	}

	return s, View{
		Width:         400,
		Height:        225,
		VFov:          40,
		Position:      core.NewVec3(0, 0.75, 2),
		LookAt:        core.NewVec3(0, 0.5, -1),
		Up:            core.NewVec3(0, 1, 0),
		DefocusAngle:  0.6,
		FocusDistance: core.NewVec3(0, 0.75, 2).Subtract(core.NewVec3(0, 0.5, -1)).Length(),
		Background:    core.NewVec3(0.7, 0.8, 1.0),
	}
}
