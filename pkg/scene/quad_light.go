package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// QuadLightRadiance is the emission of the quad in NewQuadLightScene
var QuadLightRadiance = core.NewVec3(2, 1.5, 1)

// NewQuadLightScene creates a single emissive quad that fills the view on a
// black background. Every pixel converges to QuadLightRadiance.
func NewQuadLightScene() (*Scene, View) {
	s := New()

	light := s.AddMaterial("Light", EmissiveMaterial{Tint: QuadLightRadiance})
	quad := s.AddObject("Panel", QuadShape{
		Q:        core.NewVec3(-50, -50, -1),
		U:        core.NewVec3(100, 0, 0),
		V:        core.NewVec3(0, 100, 0),
		Material: light,
	})
	_ = s.AddToWorld(quad)

	return s, View{
		Width:         64,
		Height:        64,
		VFov:          40,
		Position:      core.NewVec3(0, 0, 1),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		FocusDistance: 1,
		Background:    core.Vec3{},
	}
}
