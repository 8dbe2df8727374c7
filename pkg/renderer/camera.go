package renderer

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// Camera generates rays for rendering. The exported fields describe the
// view; Ready must be called after changing any of them.
type Camera struct {
	Width, Height int
	AspectRatio   float64 // Width over height; derives Height when it is unset
	VFov          float64 // Vertical field of view in degrees
	Position      core.Vec3
	LookAt        core.Vec3
	Up            core.Vec3
	DefocusAngle  float64   // Variation angle of rays through each pixel
	FocusDistance float64   // Distance to the plane of perfect focus
	Background    core.Vec3 // Radiance of rays that escape the scene

	center       core.Vec3
	pixel00      core.Vec3 // Center of pixel (0, 0)
	pixelDeltaU  core.Vec3 // Offset to the pixel on the right
	pixelDeltaV  core.Vec3 // Offset to the pixel below
	u, v, w      core.Vec3 // Camera basis
	defocusDiskU core.Vec3
	defocusDiskV core.Vec3
}

// NewCamera creates a camera matching the given view. The camera is ready.
func NewCamera(view scene.View) Camera {
	c := Camera{
		Width:         view.Width,
		Height:        view.Height,
		AspectRatio:   view.AspectRatio,
		VFov:          view.VFov,
		Position:      view.Position,
		LookAt:        view.LookAt,
		Up:            view.Up,
		DefocusAngle:  view.DefocusAngle,
		FocusDistance: view.FocusDistance,
		Background:    view.Background,
	}
	if c.FocusDistance <= 0 {
		c.FocusDistance = 10
	}
	c.Ready()
	return c
}

// DefaultCamera returns the camera used when no view is supplied
func DefaultCamera() Camera {
	return NewCamera(scene.View{
		Width:         100,
		Height:        100,
		VFov:          90,
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		FocusDistance: 10,
		Background:    core.NewVec3(0.7, 0.8, 1.0),
	})
}

// Ready recomputes the derived basis and pixel grid
func (c *Camera) Ready() {
	c.Width = max(c.Width, 1)
	if c.Height <= 0 && c.AspectRatio > 0 {
		c.Height = int(float64(c.Width) / c.AspectRatio)
	}
	c.Height = max(c.Height, 1)

	c.center = c.Position

	// Determine viewport dimensions
	theta := c.VFov * math.Pi / 180
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * c.FocusDistance
	viewportWidth := viewportHeight * float64(c.Width) / float64(c.Height)

	c.w = c.center.Subtract(c.LookAt).Normalize()
	c.u = c.Up.Cross(c.w).Normalize()
	c.v = c.w.Cross(c.u)

	// Screen space is x-right, y-down
	viewportU := c.u.Multiply(viewportWidth)
	viewportV := c.v.Negate().Multiply(viewportHeight)

	c.pixelDeltaU = viewportU.Divide(float64(c.Width))
	c.pixelDeltaV = viewportV.Divide(float64(c.Height))

	upperLeft := c.center.
		Subtract(c.w.Multiply(c.FocusDistance)).
		Subtract(viewportU.Multiply(0.5)).
		Subtract(viewportV.Multiply(0.5))
	c.pixel00 = upperLeft.Add(c.pixelDeltaU.Add(c.pixelDeltaV).Multiply(0.5))

	defocusRadius := c.FocusDistance * math.Tan(c.DefocusAngle*math.Pi/360)
	c.defocusDiskU = c.u.Multiply(defocusRadius)
	c.defocusDiskV = c.v.Multiply(defocusRadius)
}

// View returns the camera's view parameters
func (c *Camera) View() scene.View {
	return scene.View{
		Width:         c.Width,
		Height:        c.Height,
		AspectRatio:   c.AspectRatio,
		VFov:          c.VFov,
		Position:      c.Position,
		LookAt:        c.LookAt,
		Up:            c.Up,
		DefocusAngle:  c.DefocusAngle,
		FocusDistance: c.FocusDistance,
		Background:    c.Background,
	}
}

// GetRay returns a ray from the defocus disk through a random point in pixel (i, j)
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	offset := sampler.Get2D()
	pixelSample := c.pixel00.
		Add(c.pixelDeltaU.Multiply(float64(i) + offset.X - 0.5)).
		Add(c.pixelDeltaV.Multiply(float64(j) + offset.Y - 0.5))

	origin := c.center
	if c.DefocusAngle > 0 {
		p := core.RandomInUnitDisk(sampler)
		origin = c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
	}

	return core.NewRayAt(origin, pixelSample.Subtract(origin), sampler.Get1D())
}
