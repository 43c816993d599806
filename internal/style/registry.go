package style

import (
	"strconv"
)

// Registry maps style ids to styles or style maps, preserving insertion order.
// Features reference entries by id; a lookup miss is never fatal.
type Registry struct {
	ids    []string
	styles map[string]*Style
	maps   map[string]StyleMap
	nextID int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		styles: make(map[string]*Style),
		maps:   make(map[string]StyleMap),
	}
}

// Put stores s under id, replacing any style or style map with that id.
func (r *Registry) Put(id string, s *Style) {
	r.track(id)
	delete(r.maps, id)
	r.styles[id] = s
}

// PutMap stores a style map under id, replacing any style with that id.
func (r *Registry) PutMap(id string, m StyleMap) {
	r.track(id)
	delete(r.styles, id)
	r.maps[id] = m
}

// Add stores s under the next free numeric id and returns it.
func (r *Registry) Add(s *Style) string {
	for {
		r.nextID++
		id := strconv.Itoa(r.nextID)
		if !r.Has(id) {
			r.Put(id, s)
			return id
		}
	}
}

// Has reports whether id names a style or a style map.
func (r *Registry) Has(id string) bool {
	_, ok := r.styles[id]
	if !ok {
		_, ok = r.maps[id]
	}
	return ok
}

// Get returns the style stored under id. Style maps are followed through their normal entry.
func (r *Registry) Get(id string) (*Style, bool) {
	// bounded to guard against cyclic style maps
	for range len(r.maps) + 1 {
		if s, ok := r.styles[id]; ok {
			return s, true
		}
		m, ok := r.maps[id]
		if !ok {
			return nil, false
		}
		id = m.Normal
	}
	return nil, false
}

// GetMap returns the style map stored under id.
func (r *Registry) GetMap(id string) (StyleMap, bool) {
	m, ok := r.maps[id]
	return m, ok
}

// Resolve returns the style for id, or fallback when id is empty or unknown.
func (r *Registry) Resolve(id string, fallback *Style) *Style {
	if r == nil || id == "" {
		return fallback
	}
	if s, ok := r.Get(id); ok && s != nil {
		return s
	}
	return fallback
}

// IDs returns entry ids in insertion order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Clone returns a deep copy.
func (r *Registry) Clone() *Registry {
	out := NewRegistry()
	out.nextID = r.nextID
	out.ids = r.IDs()
	for id, s := range r.styles {
		out.styles[id] = s.Clone()
	}
	for id, m := range r.maps {
		out.maps[id] = m
	}
	return out
}

func (r *Registry) track(id string) {
	if !r.Has(id) {
		r.ids = append(r.ids, id)
	}
}
