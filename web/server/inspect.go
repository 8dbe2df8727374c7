package server

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool       `json:"hit"`
	ObjectID     int        `json:"objectId,omitempty"`
	Object       string     `json:"object,omitempty"`
	GeometryType string     `json:"geometryType,omitempty"`
	MaterialType string     `json:"materialType,omitempty"`
	Point        [3]float64 `json:"point"`
	Normal       [3]float64 `json:"normal"`
	Distance     float64    `json:"distance"`
	FrontFace    bool       `json:"frontFace"`
}

// pixelCenter is a sampler that always lands in the middle of the pixel and
// on the lens axis, so inspection rays are repeatable
type pixelCenter struct{}

func (pixelCenter) Get1D() float64   { return 0.5 }
func (pixelCenter) Get2D() core.Vec2 { return core.NewVec2(0.5, 0.5) }

// handleInspect casts a ray through pixel (x, y) of the current view and
// reports the world object it hits first
func (s *Server) handleInspect(c echo.Context) error {
	width, height := s.viewport.Resolution()

	x, err := parseIntParam(c.QueryParams(), "x", -1, 0, width-1)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	y, err := parseIntParam(c.QueryParams(), "y", -1, 0, height-1)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	if x < 0 || y < 0 {
		return errorJSON(c, http.StatusBadRequest, "x and y are required")
	}

	sc := s.viewport.Scene()
	snap := sc.Current()
	if snap == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "scene not compiled yet")
	}

	camera := s.viewport.Camera()
	ray := camera.GetRay(x, y, pixelCenter{})

	id, rec, ok := snap.Pick(ray, core.NewInterval(0.001, math.Inf(1)), pixelCenter{})
	if !ok {
		return c.JSON(http.StatusOK, InspectResponse{Hit: false})
	}

	response := InspectResponse{
		Hit:          true,
		ObjectID:     int(id),
		MaterialType: material.MaterialName(rec.Material),
		Point:        [3]float64{rec.Point.X, rec.Point.Y, rec.Point.Z},
		Normal:       [3]float64{rec.Normal.X, rec.Normal.Y, rec.Normal.Z},
		Distance:     rec.T,
		FrontFace:    rec.FrontFace,
	}
	if name, shape, found := sc.Object(id); found {
		response.Object = name
		response.GeometryType = scene.ShapeKind(shape)
	}

	return c.JSON(http.StatusOK, response)
}
