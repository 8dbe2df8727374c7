package scene

import (
	"maps"
	"slices"
)

type entry[D any] struct {
	name string
	desc D
}

// registry stores named descriptors under monotonically issued handles.
// Handles of removed entries are never reused.
type registry[ID ~int, D any] struct {
	last    ID
	entries map[ID]*entry[D]
}

func newRegistry[ID ~int, D any]() *registry[ID, D] {
	return &registry[ID, D]{entries: make(map[ID]*entry[D])}
}

func (r *registry[ID, D]) add(name string, desc D) ID {
	r.last++
	r.entries[r.last] = &entry[D]{name: name, desc: desc}
	return r.last
}

func (r *registry[ID, D]) get(id ID) (*entry[D], bool) {
	e, ok := r.entries[id]
	return e, ok
}

func (r *registry[ID, D]) remove(id ID) bool {
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// ids returns every live handle in issue order
func (r *registry[ID, D]) ids() []ID {
	return slices.Sorted(maps.Keys(r.entries))
}

func (r *registry[ID, D]) len() int {
	return len(r.entries)
}
