package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// NewCornellScene creates the classic Cornell box: quad walls, a disk light
// in the ceiling, a tall rotated cube, a smoke-filled cube and a glass sphere
func NewCornellScene() (*Scene, View) {
	s := New()

	// Textures
	red := s.AddTexture("Red", ColorTexture{Color: core.NewVec3(1, 0, 0)})
	white := s.AddTexture("Off white", ColorTexture{Color: core.NewVec3(0.8, 0.8, 0.75)})
	green := s.AddTexture("Green", ColorTexture{Color: core.NewVec3(0.12, 0.45, 0.15)})
	black := s.AddTexture("Black", ColorTexture{Color: core.Vec3{}})

	// Materials
	redRough := s.AddMaterial("Red rough", DiffuseMaterial{Albedo: red})
	redGlass := s.AddMaterial("Red glass", TranslucentMaterial{Tint: red, RefractiveIndex: 1.5})
	whiteRough := s.AddMaterial("White rough", DiffuseMaterial{Albedo: white})
	greenMetal := s.AddMaterial("Green rough metal", MetallicMaterial{Albedo: green, Roughness: 0.9})
	lightMat := s.AddMaterial("White emissive", EmissiveMaterial{Texture: white, Tint: core.Splat(7)})
	smoke := s.AddMaterial("Black volume", VolumetricMaterial{Albedo: black})

	// Cornell box dimensions (standard 555x555x555 units)
	const boxSize = 555.0

	room := s.AddObject("Room", ListShape{Children: []ObjectID{
		s.AddObject("Green wall", QuadShape{
			Q: core.NewVec3(boxSize, 0, 0), U: core.NewVec3(0, boxSize, 0), V: core.NewVec3(0, 0, boxSize), Material: greenMetal,
		}),
		s.AddObject("Red wall", QuadShape{
			Q: core.NewVec3(0, 0, 0), U: core.NewVec3(0, boxSize, 0), V: core.NewVec3(0, 0, boxSize), Material: redRough,
		}),
		s.AddObject("Light", DiskShape{
			Q: core.NewVec3(343, 554, 332), U: core.NewVec3(-130, 0, 0), V: core.NewVec3(0, 0, -105), Material: lightMat,
		}),
		s.AddObject("Floor", QuadShape{
			Q: core.NewVec3(0, 0, 0), U: core.NewVec3(boxSize, 0, 0), V: core.NewVec3(0, 0, boxSize), Material: whiteRough,
		}),
		s.AddObject("Ceiling", QuadShape{
			Q: core.NewVec3(boxSize, boxSize, boxSize), U: core.NewVec3(-boxSize, 0, 0), V: core.NewVec3(0, 0, -boxSize), Material: whiteRough,
		}),
		s.AddObject("Back wall", QuadShape{
			Q: core.NewVec3(0, 0, boxSize), U: core.NewVec3(boxSize, 0, 0), V: core.NewVec3(0, boxSize, 0), Material: whiteRough,
		}),
	}})

	sphere := s.AddObject("Glass sphere", SphereShape{Center: core.NewVec3(384, 80, 140), Radius: 80, Material: redGlass})

	// Tall cube: rotated on all three axes, then moved into place
	cubeA := s.AddObject("Cube A", CubeShape{A: core.Vec3{}, B: core.NewVec3(165, 330, 165), Material: whiteRough})
	rotatedA := s.AddObject("Cube A rotation", RotateShape{Child: cubeA, Angles: core.NewVec3(60, 15, 65)})
	movedA := s.AddObject("Cube A placement", TranslateShape{Child: rotatedA, Offset: core.NewVec3(265, 50, 295)})

	// Short cube filled with black smoke
	cubeB := s.AddObject("Cube B", CubeShape{A: core.Vec3{}, B: core.Splat(165), Material: whiteRough})
	rotatedB := s.AddObject("Cube B rotation", RotateShape{Child: cubeB, Angles: core.NewVec3(0, -18, 0)})
	movedB := s.AddObject("Cube B placement", TranslateShape{Child: rotatedB, Offset: core.NewVec3(130, 0, 65)})
	smokeB := s.AddObject("Cube B smoke", VolumeShape{Boundary: movedB, Density: 0.008, Phase: smoke})

	for _, id := range []ObjectID{room, movedA, smokeB, sphere} {
		_ = s.AddToWorld(id)
	}

	return s, View{
		Width:         300,
		Height:        300,
		VFov:          40,
		Position:      core.NewVec3(278, 278, -800),
		LookAt:        core.NewVec3(278, 278, 0),
		Up:            core.NewVec3(0, 1, 0),
		FocusDistance: 10,
		Background:    core.Vec3{},
	}
}
