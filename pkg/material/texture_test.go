package material

import (
	"math/rand"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

func TestChecker_ParityOfUVCells(t *testing.T) {
	even := core.NewVec3(1, 1, 1)
	odd := core.NewVec3(0, 0, 0)
	checker := NewCheckerColors(0.5, even, odd)

	tests := []struct {
		name     string
		u, v     float64
		p        core.Vec3
		expected core.Vec3
	}{
		{"origin cell", 0.1, 0.1, core.Vec3{}, even},
		{"next cell in u", 0.6, 0.1, core.Vec3{}, odd},
		{"diagonal cell", 0.6, 0.6, core.Vec3{}, even},
		{"world position ignored", 0.1, 0.1, core.NewVec3(100.7, -3.2, 9), even},
		{"negative u", -0.1, 0.1, core.Vec3{}, odd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.Value(tt.u, tt.v, tt.p); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestImage_NearestLookupWithFlip(t *testing.T) {
	// 2x2: top row red, green; bottom row blue, white
	pixels := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	}
	img := NewImage(2, 2, pixels)

	tests := []struct {
		name     string
		u, v     float64
		expected core.Vec3
	}{
		{"bottom left", 0.1, 0.1, core.NewVec3(0, 0, 1)},
		{"top left", 0.1, 0.9, core.NewVec3(1, 0, 0)},
		{"top right", 0.9, 0.9, core.NewVec3(0, 1, 0)},
		{"clamped beyond one", 1.5, -2, core.NewVec3(1, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := img.Value(tt.u, tt.v, core.Vec3{}); got.Subtract(tt.expected).Length() > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestImage_Sentinels(t *testing.T) {
	if got := NewImage(0, 0, nil).Value(0.5, 0.5, core.Vec3{}); got != missingImageColor {
		t.Errorf("Expected cyan for an unloaded image, got %v", got)
	}
	if got := NewImage(4, 4, make([]byte, 3)).Value(0.9, 0.1, core.Vec3{}); got != missingPixelColor {
		t.Errorf("Expected magenta for short pixel data, got %v", got)
	}
}

func TestMarble_StaysWithinBase(t *testing.T) {
	base := core.NewVec3(0.8, 0.6, 0.4)
	marble := NewMarble(4, NewSolidColor(base), rand.New(rand.NewSource(42)))
	random := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		p := core.NewVec3(random.Float64()*20-10, random.Float64()*20-10, random.Float64()*20-10)
		c := marble.Value(0, 0, p)
		if c.X < 0 || c.X > base.X+1e-12 || c.Y > base.Y+1e-12 || c.Z > base.Z+1e-12 {
			t.Fatalf("Marble value %v outside [0, base]", c)
		}
	}
}

func TestPerlin_Deterministic(t *testing.T) {
	a := NewPerlin(rand.New(rand.NewSource(5)))
	b := NewPerlin(rand.New(rand.NewSource(5)))
	p := core.NewVec3(1.3, -2.7, 0.4)
	if a.Noise(p) != b.Noise(p) {
		t.Error("Same seed should give identical noise")
	}
	if a.Turbulence(p, 7) < 0 {
		t.Error("Turbulence must be non-negative")
	}
}

func TestUVDebug(t *testing.T) {
	if got := NewUVDebug().Value(0.25, 0.75, core.Vec3{}); got != core.NewVec3(0.25, 0.75, 0) {
		t.Errorf("Expected (0.25,0.75,0), got %v", got)
	}
}

func TestProceduralImages(t *testing.T) {
	board := NewCheckerboardImage(4, 4, 2, [3]byte{255, 255, 255}, [3]byte{0, 0, 0})
	if len(board) != 4*4*3 {
		t.Fatalf("Expected %d bytes, got %d", 4*4*3, len(board))
	}
	if board[0] != 255 || board[2*3] != 0 {
		t.Errorf("Unexpected checkerboard layout")
	}

	gradient := NewGradientImage(1, 3, core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0))
	if gradient[0] != 255 || gradient[6] != 0 {
		t.Errorf("Unexpected gradient endpoints: %v", gradient)
	}
}
