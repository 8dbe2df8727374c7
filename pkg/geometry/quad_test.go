package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func TestQuad_Hit_BasicIntersection(t *testing.T) {
	// 1x1 quad in the XZ plane at y=0
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), testMaterial)

	ray := core.NewRay(core.NewVec3(0.5, 1, 0.5), core.NewVec3(0, -1, 0))

	var rec material.HitRecord
	if !quad.Hit(ray, forward, testSampler(), &rec) {
		t.Fatal("Expected hit, but got miss")
	}
	if math.Abs(rec.T-1.0) > 1e-9 {
		t.Errorf("Expected t=1, got t=%f", rec.T)
	}
	if !vecNear(rec.Point, core.NewVec3(0.5, 0, 0.5), 1e-9) {
		t.Errorf("Expected hit point (0.5,0,0.5), got %v", rec.Point)
	}
}

func TestQuad_CenterHasHalfCoordinates(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		q := core.NewVec3(random.Float64()*10-5, random.Float64()*10-5, random.Float64()*10-5)
		u := core.NewVec3(random.Float64()*4-2, random.Float64()*4-2, random.Float64()*4-2)
		v := core.NewVec3(random.Float64()*4-2, random.Float64()*4-2, random.Float64()*4-2)
		if u.Cross(v).Length() < 0.1 {
			continue
		}
		quad := NewQuad(q, u, v, testMaterial)

		center := q.Add(u.Multiply(0.5)).Add(v.Multiply(0.5))
		alpha, beta := quad.PlanarCoordinates(center)
		if math.Abs(alpha-0.5) > 1e-6 || math.Abs(beta-0.5) > 1e-6 {
			t.Fatalf("Expected (0.5,0.5), got (%f,%f)", alpha, beta)
		}

		// A ray aimed at the center reports the same coordinates
		origin := center.Add(quad.Normal().Multiply(3))
		var rec material.HitRecord
		if !quad.Hit(core.NewRay(origin, center.Subtract(origin)), forward, testSampler(), &rec) {
			t.Fatal("Expected ray through the center to hit")
		}
		if math.Abs(rec.U-0.5) > 1e-6 || math.Abs(rec.V-0.5) > 1e-6 {
			t.Fatalf("Expected hit uv (0.5,0.5), got (%f,%f)", rec.U, rec.V)
		}
	}
}

func TestQuad_Hit_Misses(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), testMaterial)

	tests := []struct {
		name      string
		rayOrigin core.Vec3
		rayDir    core.Vec3
		rayT      core.Interval
	}{
		{"outside X bounds", core.NewVec3(-0.5, 1, 0.5), core.NewVec3(0, -1, 0), forward},
		{"outside Z bounds", core.NewVec3(0.5, 1, 1.5), core.NewVec3(0, -1, 0), forward},
		{"parallel to plane", core.NewVec3(0.5, 1, 0.5), core.NewVec3(1, 0, 0), forward},
		{"behind the ray", core.NewVec3(0.5, 1, 0.5), core.NewVec3(0, 1, 0), forward},
		{"beyond interval", core.NewVec3(0.5, 1, 0.5), core.NewVec3(0, -1, 0), core.NewInterval(0.001, 0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec material.HitRecord
			if quad.Hit(core.NewRay(tt.rayOrigin, tt.rayDir), tt.rayT, testSampler(), &rec) {
				t.Errorf("Expected miss, got hit at t=%f", rec.T)
			}
		})
	}
}

func TestQuad_BoundingBoxIsPaddedWhenFlat(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 2, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), testMaterial)
	box := quad.BoundingBox()
	if box.Y.Size() < core.AABBEpsilon-1e-15 {
		t.Errorf("Expected padded Y extent, got %g", box.Y.Size())
	}
	if !box.Y.Contains(2) {
		t.Errorf("Padded box should still contain the plane, got %v", box.Y)
	}
}

func TestDisk_InteriorIsInscribedEllipse(t *testing.T) {
	disk := NewDisk(core.NewVec3(-1, 0, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), testMaterial)

	tests := []struct {
		name     string
		x, z     float64
		expected bool
	}{
		{"center", 0, 0, true},
		{"near edge", 0.99, 0, true},
		{"corner of bounding quad", 0.9, 0.9, false},
		{"outside", 1.5, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec material.HitRecord
			hit := disk.Hit(core.NewRay(core.NewVec3(tt.x, 1, tt.z), core.NewVec3(0, -1, 0)), forward, testSampler(), &rec)
			if hit != tt.expected {
				t.Errorf("Expected hit=%t, got %t", tt.expected, hit)
			}
		})
	}
}
