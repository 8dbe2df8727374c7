package scene

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Snapshot is an immutable, render-ready view of a Scene. Workers may share
// one snapshot freely; a rebuild publishes a new one instead of mutating it.
type Snapshot struct {
	World      *geometry.List    // Compiled world render set
	WorldIDs   []ObjectID        // Handle of each World entry, in order
	BVH        *geometry.BVHNode // Hierarchy over World
	Version    uint64            // Increments with every rebuild
	Objects    int               // Registered objects
	Materials  int               // Registered materials
	Textures   int               // Registered textures
	Primitives int               // Leaf primitives reachable from the world
	Err        error             // Problems found while compiling, nil when clean
}

// Hittable returns the root the renderer should trace against
func (snap *Snapshot) Hittable() geometry.Hittable {
	return snap.BVH
}

// Pick returns the world object a ray hits first, with its hit record
func (snap *Snapshot) Pick(ray core.Ray, rayT core.Interval, sampler core.Sampler) (ObjectID, material.HitRecord, bool) {
	var (
		picked  ObjectID
		closest material.HitRecord
		found   bool
	)
	for i, obj := range snap.World.Objects {
		var rec material.HitRecord
		if obj.Hit(ray, rayT, sampler, &rec) {
			rayT.Max = rec.T
			picked, closest, found = snap.WorldIDs[i], rec, true
		}
	}
	return picked, closest, found
}

var (
	// fallbackColor marks surfaces whose texture reference could not be resolved
	fallbackColor    = core.NewVec3(1, 0, 1)
	fallbackTexture  = material.NewSolidColor(fallbackColor)
	fallbackMaterial = material.NewDiffuse(fallbackTexture)
	whiteTexture     = material.NewSolidColor(core.Splat(1))
)

// compiler resolves handles into runtime values. Each node compiles once and
// is shared by every parent referencing it; the visiting sets break cycles.
type compiler struct {
	scene *Scene

	textures  map[TextureID]material.Texture
	materials map[MaterialID]material.Material
	objects   map[ObjectID]geometry.Hittable

	visitingTextures map[TextureID]bool
	visitingObjects  map[ObjectID]bool

	primitives int
	errs       []error
}

// compile must be called with s.mu held
func compile(s *Scene) *Snapshot {
	c := &compiler{
		scene:            s,
		textures:         make(map[TextureID]material.Texture),
		materials:        make(map[MaterialID]material.Material),
		objects:          make(map[ObjectID]geometry.Hittable),
		visitingTextures: make(map[TextureID]bool),
		visitingObjects:  make(map[ObjectID]bool),
	}

	world := geometry.NewList()
	var ids []ObjectID
	for _, id := range s.world {
		if obj := c.object(id); obj != nil {
			world.Add(obj)
			ids = append(ids, id)
		}
	}

	return &Snapshot{
		World:      world,
		WorldIDs:   ids,
		BVH:        geometry.NewBVHFromList(world),
		Objects:    s.objects.len(),
		Materials:  s.materials.len(),
		Textures:   s.textures.len(),
		Primitives: c.primitives,
		Err:        errors.Join(c.errs...),
	}
}

func (c *compiler) fail(err error) {
	c.errs = append(c.errs, err)
}

// texture resolves a required texture slot
func (c *compiler) texture(id TextureID, owner string) material.Texture {
	if id == NoTexture {
		c.fail(fmt.Errorf("%s: empty texture slot: %w", owner, ErrInvalidHandle))
		return fallbackTexture
	}
	return c.optionalTexture(id, owner, fallbackTexture)
}

// optionalTexture resolves a texture slot that may be left empty
func (c *compiler) optionalTexture(id TextureID, owner string, empty material.Texture) material.Texture {
	if id == NoTexture {
		return empty
	}
	if tex, ok := c.textures[id]; ok {
		return tex
	}
	if c.visitingTextures[id] {
		c.fail(fmt.Errorf("%s -> texture %d: %w", owner, id, ErrCycle))
		return fallbackTexture
	}
	e, ok := c.scene.textures.get(id)
	if !ok {
		c.fail(fmt.Errorf("%s -> texture %d: %w", owner, id, ErrInvalidHandle))
		return fallbackTexture
	}

	c.visitingTextures[id] = true
	defer delete(c.visitingTextures, id)

	self := fmt.Sprintf("texture %d (%s)", id, e.name)
	var tex material.Texture
	switch desc := e.desc.(type) {
	case ColorTexture:
		tex = material.NewSolidColor(desc.Color)
	case CheckerTexture:
		scale := desc.Scale
		if scale <= 0 {
			scale = 1
		}
		tex = material.NewChecker(scale, c.texture(desc.Even, self), c.texture(desc.Odd, self))
	case PerlinTexture:
		base := c.optionalTexture(desc.Base, self, whiteTexture)
		tex = material.NewMarble(desc.Scale, base, rand.New(rand.NewSource(desc.Seed)))
	case ImageTexture:
		tex = material.NewImage(desc.Width, desc.Height, desc.Pixels)
	case UVDebugTexture:
		tex = material.NewUVDebug()
	default:
		panic(fmt.Sprintf("scene: unknown texture variant %T", desc))
	}

	c.textures[id] = tex
	return tex
}

// material resolves a material slot. Materials reference only textures, so
// they cannot take part in a cycle.
func (c *compiler) material(id MaterialID, owner string) material.Material {
	if mat, ok := c.materials[id]; ok {
		return mat
	}
	e, ok := c.scene.materials.get(id)
	if !ok {
		c.fail(fmt.Errorf("%s -> material %d: %w", owner, id, ErrInvalidHandle))
		return fallbackMaterial
	}

	self := fmt.Sprintf("material %d (%s)", id, e.name)
	var mat material.Material
	switch desc := e.desc.(type) {
	case DiffuseMaterial:
		mat = material.NewDiffuse(c.texture(desc.Albedo, self))
	case MetallicMaterial:
		mat = material.NewMetallic(c.texture(desc.Albedo, self), desc.Roughness)
	case TranslucentMaterial:
		mat = material.NewTintedTranslucent(c.optionalTexture(desc.Tint, self, nil), desc.RefractiveIndex)
	case EmissiveMaterial:
		mat = material.NewEmissiveTexture(c.optionalTexture(desc.Texture, self, nil), desc.Tint)
	case VolumetricMaterial:
		mat = material.NewVolumetric(c.texture(desc.Albedo, self))
	case DebugNormalMaterial:
		mat = material.NewDebugNormal()
	default:
		panic(fmt.Sprintf("scene: unknown material variant %T", desc))
	}

	c.materials[id] = mat
	return mat
}

// object resolves an object handle, returning nil when the object has to be
// dropped (dangling handle, cycle, or a transform with no valid child)
func (c *compiler) object(id ObjectID) geometry.Hittable {
	if obj, ok := c.objects[id]; ok {
		return obj
	}
	if c.visitingObjects[id] {
		c.fail(fmt.Errorf("object %d: %w", id, ErrCycle))
		return nil
	}
	e, ok := c.scene.objects.get(id)
	if !ok {
		c.fail(fmt.Errorf("object %d: %w", id, ErrInvalidHandle))
		return nil
	}

	c.visitingObjects[id] = true
	defer delete(c.visitingObjects, id)

	self := fmt.Sprintf("object %d (%s)", id, e.name)
	var obj geometry.Hittable
	switch shape := e.desc.(type) {
	case SphereShape:
		obj = geometry.NewSphere(shape.Center, shape.Radius, c.material(shape.Material, self))
		c.primitives++
	case QuadShape:
		obj = geometry.NewQuad(shape.Q, shape.U, shape.V, c.material(shape.Material, self))
		c.primitives++
	case DiskShape:
		obj = geometry.NewDisk(shape.Q, shape.U, shape.V, c.material(shape.Material, self))
		c.primitives++
	case CubeShape:
		obj = geometry.NewCube(shape.A, shape.B, c.material(shape.Material, self))
		c.primitives += 6
	case ListShape:
		list := geometry.NewList()
		for _, child := range shape.Children {
			if compiled := c.object(child); compiled != nil {
				list.Add(compiled)
			}
		}
		obj = list
	case VolumeShape:
		boundary := c.object(shape.Boundary)
		if boundary == nil {
			return nil
		}
		obj = geometry.NewVolume(boundary, max(shape.Density, 0), c.material(shape.Phase, self))
	case TranslateShape:
		child := c.object(shape.Child)
		if child == nil {
			return nil
		}
		obj = geometry.NewTranslate(child, shape.Offset)
	case RotateShape:
		child := c.object(shape.Child)
		if child == nil {
			return nil
		}
		obj = geometry.NewRotate(child, shape.Angles)
	default:
		panic(fmt.Sprintf("scene: unknown shape variant %T", shape))
	}

	c.objects[id] = obj
	return obj
}
