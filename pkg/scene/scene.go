package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/df07/go-progressive-pathtracer/pkg/log"
)

var (
	// ErrInvalidHandle is returned for handles that were never issued or were removed
	ErrInvalidHandle = errors.New("scene: invalid handle")
	// ErrCycle is reported when an object or texture references itself through its children
	ErrCycle = errors.New("scene: reference cycle")
	// ErrKindMismatch is returned when a rebind targets a slot the descriptor does not have
	ErrKindMismatch = errors.New("scene: descriptor has no such slot")
)

// Scene owns the object, material and texture registries plus the world
// render set. Edits go through the methods below; each one marks the scene
// dirty. Renderers never see the registries directly: they read the
// immutable Snapshot produced by the last rebuild.
type Scene struct {
	mu        sync.Mutex
	objects   *registry[ObjectID, Shape]
	materials *registry[MaterialID, MaterialDesc]
	textures  *registry[TextureID, TextureDesc]
	world     []ObjectID

	dirty    atomic.Bool
	builds   atomic.Uint64
	snapshot atomic.Pointer[Snapshot]
	logger   log.Logger
}

// New creates an empty scene. A new scene starts dirty.
func New() *Scene {
	s := &Scene{
		objects:   newRegistry[ObjectID, Shape](),
		materials: newRegistry[MaterialID, MaterialDesc](),
		textures:  newRegistry[TextureID, TextureDesc](),
		logger:    log.New("scene"),
	}
	s.dirty.Store(true)
	return s
}

// MarkDirty flags the scene for rebuild and reports whether it was already dirty
func (s *Scene) MarkDirty() bool {
	return s.dirty.Swap(true)
}

// IsDirty reports whether the last snapshot is out of date
func (s *Scene) IsDirty() bool {
	return s.dirty.Load()
}

// AddTexture registers a texture and returns its handle
func (s *Scene) AddTexture(name string, desc TextureDesc) TextureID {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.MarkDirty()
	return s.textures.add(name, desc)
}

// AddMaterial registers a material and returns its handle
func (s *Scene) AddMaterial(name string, desc MaterialDesc) MaterialID {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.MarkDirty()
	return s.materials.add(name, desc)
}

// AddObject registers an object and returns its handle. The object is not
// rendered until it is added to the world or referenced by a world object.
func (s *Scene) AddObject(name string, shape Shape) ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.MarkDirty()
	return s.objects.add(name, shape)
}

// RemoveTexture deletes a texture. Materials still referencing it are
// reported and rendered with a fallback on the next rebuild.
func (s *Scene) RemoveTexture(id TextureID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.textures.remove(id) {
		return fmt.Errorf("remove texture %d: %w", id, ErrInvalidHandle)
	}
	s.MarkDirty()
	return nil
}

// RemoveMaterial deletes a material
func (s *Scene) RemoveMaterial(id MaterialID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.materials.remove(id) {
		return fmt.Errorf("remove material %d: %w", id, ErrInvalidHandle)
	}
	s.MarkDirty()
	return nil
}

// RemoveObject deletes an object and takes it out of the world
func (s *Scene) RemoveObject(id ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.objects.remove(id) {
		return fmt.Errorf("remove object %d: %w", id, ErrInvalidHandle)
	}
	s.world = slices.DeleteFunc(s.world, func(w ObjectID) bool { return w == id })
	s.MarkDirty()
	return nil
}

// RenameTexture changes a texture's display name
func (s *Scene) RenameTexture(id TextureID, name string) error {
	return rename(s, s.textures, id, name, "texture")
}

// RenameMaterial changes a material's display name
func (s *Scene) RenameMaterial(id MaterialID, name string) error {
	return rename(s, s.materials, id, name, "material")
}

// RenameObject changes an object's display name
func (s *Scene) RenameObject(id ObjectID, name string) error {
	return rename(s, s.objects, id, name, "object")
}

func rename[ID ~int, D any](s *Scene, r *registry[ID, D], id ID, name, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := r.get(id)
	if !ok {
		return fmt.Errorf("rename %s %d: %w", kind, id, ErrInvalidHandle)
	}
	e.name = name
	s.MarkDirty()
	return nil
}

// UpdateTexture replaces a texture's descriptor
func (s *Scene) UpdateTexture(id TextureID, desc TextureDesc) error {
	return replace(s, s.textures, id, desc, "texture")
}

// UpdateMaterial replaces a material's descriptor
func (s *Scene) UpdateMaterial(id MaterialID, desc MaterialDesc) error {
	return replace(s, s.materials, id, desc, "material")
}

// UpdateObject replaces an object's descriptor
func (s *Scene) UpdateObject(id ObjectID, shape Shape) error {
	return replace(s, s.objects, id, shape, "object")
}

func replace[ID ~int, D any](s *Scene, r *registry[ID, D], id ID, desc D, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := r.get(id)
	if !ok {
		return fmt.Errorf("update %s %d: %w", kind, id, ErrInvalidHandle)
	}
	e.desc = desc
	s.MarkDirty()
	return nil
}

// SetObjectMaterial rebinds the material of a primitive or the phase
// function of a volume
func (s *Scene) SetObjectMaterial(id ObjectID, mat MaterialID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.objects.get(id)
	if !ok {
		return fmt.Errorf("set material on object %d: %w", id, ErrInvalidHandle)
	}
	if _, ok := s.materials.get(mat); !ok {
		return fmt.Errorf("set material %d: %w", mat, ErrInvalidHandle)
	}

	switch shape := e.desc.(type) {
	case SphereShape:
		shape.Material = mat
		e.desc = shape
	case QuadShape:
		shape.Material = mat
		e.desc = shape
	case DiskShape:
		shape.Material = mat
		e.desc = shape
	case CubeShape:
		shape.Material = mat
		e.desc = shape
	case VolumeShape:
		shape.Phase = mat
		e.desc = shape
	default:
		return fmt.Errorf("set material on %s %d: %w", ShapeKind(shape), id, ErrKindMismatch)
	}

	s.MarkDirty()
	return nil
}

// SetObjectChild rebinds the single child of a transform or the boundary of a volume
func (s *Scene) SetObjectChild(id, child ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.objects.get(id)
	if !ok {
		return fmt.Errorf("set child on object %d: %w", id, ErrInvalidHandle)
	}
	if _, ok := s.objects.get(child); !ok {
		return fmt.Errorf("set child %d: %w", child, ErrInvalidHandle)
	}

	switch shape := e.desc.(type) {
	case TranslateShape:
		shape.Child = child
		e.desc = shape
	case RotateShape:
		shape.Child = child
		e.desc = shape
	case VolumeShape:
		shape.Boundary = child
		e.desc = shape
	default:
		return fmt.Errorf("set child on %s %d: %w", ShapeKind(shape), id, ErrKindMismatch)
	}

	s.MarkDirty()
	return nil
}

// AddListChild appends a child to a list object
func (s *Scene) AddListChild(id, child ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.objects.get(id)
	if !ok {
		return fmt.Errorf("add child to object %d: %w", id, ErrInvalidHandle)
	}
	if _, ok := s.objects.get(child); !ok {
		return fmt.Errorf("add child %d: %w", child, ErrInvalidHandle)
	}
	list, ok := e.desc.(ListShape)
	if !ok {
		return fmt.Errorf("add child to %s %d: %w", ShapeKind(e.desc), id, ErrKindMismatch)
	}

	list.Children = append(slices.Clone(list.Children), child)
	e.desc = list
	s.MarkDirty()
	return nil
}

// RemoveListChild removes every occurrence of child from a list object
func (s *Scene) RemoveListChild(id, child ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.objects.get(id)
	if !ok {
		return fmt.Errorf("remove child from object %d: %w", id, ErrInvalidHandle)
	}
	list, ok := e.desc.(ListShape)
	if !ok {
		return fmt.Errorf("remove child from %s %d: %w", ShapeKind(e.desc), id, ErrKindMismatch)
	}

	list.Children = slices.DeleteFunc(slices.Clone(list.Children), func(c ObjectID) bool { return c == child })
	e.desc = list
	s.MarkDirty()
	return nil
}

// SetMaterialTexture rebinds the primary texture slot of a material
func (s *Scene) SetMaterialTexture(id MaterialID, tex TextureID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.materials.get(id)
	if !ok {
		return fmt.Errorf("set texture on material %d: %w", id, ErrInvalidHandle)
	}
	if _, ok := s.textures.get(tex); !ok {
		return fmt.Errorf("set texture %d: %w", tex, ErrInvalidHandle)
	}

	switch desc := e.desc.(type) {
	case DiffuseMaterial:
		desc.Albedo = tex
		e.desc = desc
	case MetallicMaterial:
		desc.Albedo = tex
		e.desc = desc
	case TranslucentMaterial:
		desc.Tint = tex
		e.desc = desc
	case EmissiveMaterial:
		desc.Texture = tex
		e.desc = desc
	case VolumetricMaterial:
		desc.Albedo = tex
		e.desc = desc
	default:
		return fmt.Errorf("set texture on %s %d: %w", MaterialKind(desc), id, ErrKindMismatch)
	}

	s.MarkDirty()
	return nil
}

// AddToWorld adds an object to the render set. Adding twice is a no-op.
func (s *Scene) AddToWorld(id ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects.get(id); !ok {
		return fmt.Errorf("add object %d to world: %w", id, ErrInvalidHandle)
	}
	if slices.Contains(s.world, id) {
		return nil
	}
	s.world = append(s.world, id)
	s.MarkDirty()
	return nil
}

// RemoveFromWorld takes an object out of the render set, keeping it registered
func (s *Scene) RemoveFromWorld(id ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.world)
	s.world = slices.DeleteFunc(s.world, func(w ObjectID) bool { return w == id })
	if len(s.world) == before {
		return false
	}
	s.MarkDirty()
	return true
}

// World returns the handles in the render set
func (s *Scene) World() []ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.world)
}

// Object returns an object's name and descriptor
func (s *Scene) Object(id ObjectID) (string, Shape, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.objects.get(id)
	if !ok {
		return "", nil, false
	}
	return e.name, e.desc, true
}

// Material returns a material's name and descriptor
func (s *Scene) Material(id MaterialID) (string, MaterialDesc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.materials.get(id)
	if !ok {
		return "", nil, false
	}
	return e.name, e.desc, true
}

// Texture returns a texture's name and descriptor
func (s *Scene) Texture(id TextureID) (string, TextureDesc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.textures.get(id)
	if !ok {
		return "", nil, false
	}
	return e.name, e.desc, true
}

// Objects returns every object handle in creation order
func (s *Scene) Objects() []ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects.ids()
}

// Materials returns every material handle in creation order
func (s *Scene) Materials() []MaterialID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.materials.ids()
}

// Textures returns every texture handle in creation order
func (s *Scene) Textures() []TextureID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textures.ids()
}

// Update rebuilds the snapshot if the scene is dirty. Problems found while
// compiling are returned but never prevent a snapshot from being published.
func (s *Scene) Update() error {
	if !s.IsDirty() {
		return nil
	}
	return s.Rebuild()
}

// Rebuild compiles the registries into a new snapshot and publishes it
func (s *Scene) Rebuild() error {
	s.mu.Lock()
	// Cleared before compiling so edits racing the rebuild re-mark it
	s.dirty.Store(false)
	snap := compile(s)
	s.mu.Unlock()

	snap.Version = s.builds.Add(1)
	s.snapshot.Store(snap)

	if snap.Err != nil {
		s.logger.Warningf("scene rebuilt with problems: %v", snap.Err)
	}
	s.logger.Debugf("scene rebuilt: version %d, %d world objects, %d primitives",
		snap.Version, snap.World.Len(), snap.Primitives)

	return snap.Err
}

// Current returns the last published snapshot, or nil before the first rebuild
func (s *Scene) Current() *Snapshot {
	return s.snapshot.Load()
}

// RenderSnapshot rebuilds if needed and returns the current snapshot
func (s *Scene) RenderSnapshot() *Snapshot {
	if s.IsDirty() || s.Current() == nil {
		_ = s.Rebuild()
	}
	return s.Current()
}
