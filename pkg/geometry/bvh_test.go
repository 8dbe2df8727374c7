package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func randomSpheres(random *rand.Rand, count int) []Hittable {
	objects := make([]Hittable, count)
	for i := range objects {
		center := core.NewVec3(random.Float64()*40-20, random.Float64()*40-20, random.Float64()*40-20)
		mat := material.NewDiffuseColor(core.NewVec3(random.Float64(), random.Float64(), random.Float64()))
		objects[i] = NewSphere(center, 0.2+random.Float64()*1.5, mat)
	}
	return objects
}

func TestBVH_MatchesLinearScan(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	objects := randomSpheres(random, 200)
	objects = append(objects,
		NewQuad(core.NewVec3(-30, -25, -30), core.NewVec3(60, 0, 0), core.NewVec3(0, 0, 60), testMaterial),
		NewCube(core.NewVec3(5, 5, 5), core.NewVec3(8, 9, 7), testMaterial),
	)

	bvh := NewBVH(objects)
	list := NewList(objects...)
	sampler := testSampler()

	hits := 0
	for i := 0; i < 2000; i++ {
		origin := core.NewVec3(random.Float64()*80-40, random.Float64()*80-40, random.Float64()*80-40)
		ray := core.NewRay(origin, core.RandomUnitVector(sampler))

		var fromBVH, fromList material.HitRecord
		hitBVH := bvh.Hit(ray, forward, sampler, &fromBVH)
		hitList := list.Hit(ray, forward, sampler, &fromList)

		if hitBVH != hitList {
			t.Fatalf("Ray %d: BVH hit=%t, list hit=%t", i, hitBVH, hitList)
		}
		if !hitBVH {
			continue
		}
		hits++
		if math.Abs(fromBVH.T-fromList.T) > 1e-9 || fromBVH.Material != fromList.Material {
			t.Fatalf("Ray %d: BVH t=%f, list t=%f", i, fromBVH.T, fromList.T)
		}
	}

	if hits == 0 {
		t.Fatal("Expected some rays to hit")
	}
}

func TestBVH_DoesNotReorderInput(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	objects := randomSpheres(random, 20)
	original := make([]Hittable, len(objects))
	copy(original, objects)

	NewBVH(objects)

	for i := range objects {
		if objects[i] != original[i] {
			t.Fatalf("Input slice reordered at index %d", i)
		}
	}
}

func TestBVH_Stats(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	tests := []struct {
		name    string
		count   int
		nodes   int
		leaves  int
		depth   int
		objects int
	}{
		{"empty", 0, 1, 1, 0, 0},
		{"single", 1, 1, 1, 0, 1},
		{"pair", 2, 1, 1, 0, 2},
		{"five", 5, 5, 3, 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bvh := NewBVH(randomSpheres(random, tt.count))
			nodes, leaves, depth, objects := bvh.Stats()
			if nodes != tt.nodes || leaves != tt.leaves || depth != tt.depth || objects != tt.objects {
				t.Errorf("Expected (%d,%d,%d,%d), got (%d,%d,%d,%d)",
					tt.nodes, tt.leaves, tt.depth, tt.objects, nodes, leaves, depth, objects)
			}
		})
	}
}

func TestBVH_EmptyNeverHits(t *testing.T) {
	bvh := NewBVH(nil)

	var rec material.HitRecord
	if bvh.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), core.UniverseInterval, testSampler(), &rec) {
		t.Error("Empty BVH should never hit")
	}
	if !bvh.BoundingBox().X.IsEmpty() {
		t.Errorf("Expected empty bounds, got %v", bvh.BoundingBox())
	}
}

func TestBVH_BoundsContainChildren(t *testing.T) {
	random := rand.New(rand.NewSource(3))
	objects := randomSpheres(random, 50)
	bvh := NewBVH(objects)

	for i, obj := range objects {
		if !bvh.BoundingBox().Contains(obj.BoundingBox()) {
			t.Errorf("Object %d bounds not contained in root", i)
		}
	}
}
