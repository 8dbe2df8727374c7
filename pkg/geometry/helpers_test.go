package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

var testMaterial = material.NewDiffuseColor(core.NewVec3(0.5, 0.5, 0.5))

var forward = core.NewInterval(0.001, math.Inf(1))

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func testSampler() core.Sampler {
	return core.NewSeededSampler(42)
}
