package scene

import (
	"sort"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// View holds the camera placement and output size a preset was designed for
type View struct {
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	AspectRatio   float64   `json:"aspectRatio"` // Derives Height when it is zero
	VFov          float64   `json:"vfov"` // Vertical field of view in degrees
	Position      core.Vec3 `json:"position"`
	LookAt        core.Vec3 `json:"lookAt"`
	Up            core.Vec3 `json:"up"`
	DefocusAngle  float64   `json:"defocusAngle"`  // Degrees; 0 disables depth of field
	FocusDistance float64   `json:"focusDistance"` // Distance to the plane of perfect focus
	Background    core.Vec3 `json:"background"`    // Radiance of escaped rays
}

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
}

type preset struct {
	info  SceneInfo
	build func() (*Scene, View)
}

var presets = map[string]preset{
	"empty": {
		info:  SceneInfo{ID: "empty", DisplayName: "Empty", Description: "Nothing but a grey sky"},
		build: NewEmptyScene,
	},
	"default": {
		info:  SceneInfo{ID: "default", DisplayName: "Default", Description: "Glass, metal and diffuse spheres on a checker ground"},
		build: NewDefaultScene,
	},
	"cornell": {
		info:  SceneInfo{ID: "cornell", DisplayName: "Cornell Box", Description: "Cornell box with a disk light, rotated cube, smoke cube and glass sphere"},
		build: NewCornellScene,
	},
	"textures": {
		info:  SceneInfo{ID: "textures", DisplayName: "Textures", Description: "Checker, marble, UV debug and image textures"},
		build: NewTextureScene,
	},
	"quad-light": {
		info:  SceneInfo{ID: "quad-light", DisplayName: "Quad Light", Description: "A single emissive quad on black"},
		build: NewQuadLightScene,
	},
}

// ListScenes returns the built-in scenes sorted by display name
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(presets))
	for _, p := range presets {
		scenes = append(scenes, p.info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes
}

// Load builds the built-in scene with the given ID
func Load(id string) (*Scene, View, bool) {
	p, ok := presets[id]
	if !ok {
		return nil, View{}, false
	}
	s, view := p.build()
	return s, view, true
}

// NewEmptyScene creates a scene with no objects and a grey background
func NewEmptyScene() (*Scene, View) {
	return New(), View{
		Width:         600,
		Height:        400,
		VFov:          75,
		Position:      core.NewVec3(0, 0, 5),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		FocusDistance: 20,
		Background:    core.Splat(0.5),
	}
}
