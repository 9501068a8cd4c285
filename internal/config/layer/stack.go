package layer

import (
	"fmt"
	"sort"
	"sync"
)

// Stack manages an ordered set of layers and provides merged access.
// Layers with equal priority keep the order in which they were pushed.
type Stack struct {
	mu     sync.RWMutex
	layers []*Layer       // Sorted by priority (ascending)
	merged map[string]any // Cached merged result
	dirty  bool           // Whether merged cache needs refresh
}

// NewStack creates an empty layer stack.
func NewStack() *Stack {
	return &Stack{
		layers: make([]*Layer, 0),
		dirty:  true,
	}
}

// Push adds a layer to the stack.
func (s *Stack) Push(l *Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.layers = append(s.layers, l)
	sort.SliceStable(s.layers, func(i, j int) bool {
		return s.layers[i].Priority < s.layers[j].Priority
	})
	s.dirty = true
}

// Remove removes a layer by name.
// Returns true if the layer was found and removed.
func (s *Stack) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.layers {
		if l.Name == name {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			s.dirty = true
			return true
		}
	}
	return false
}

// Layer returns a layer by name.
func (s *Stack) Layer(name string) *Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLayer(name)
}

// Layers returns a copy of all layers sorted by priority.
func (s *Stack) Layers() []*Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Layer, len(s.layers))
	copy(result, s.layers)
	return result
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

// Merge combines all layers into a single tree.
// Results are cached until a layer is pushed, removed, or updated.
func (s *Stack) Merge() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty && s.merged != nil {
		return cloneMap(s.merged)
	}

	result := make(map[string]any)
	for _, l := range s.layers {
		result = DeepMerge(result, l.Data)
	}

	s.merged = result
	s.dirty = false

	return cloneMap(result)
}

// Get returns the effective value for a path and the layer that provides it.
func (s *Stack) Get(path string) (any, *Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		if val, ok := GetByPath(l.Data, path); ok {
			return val, l, true
		}
	}

	return nil, nil, false
}

// WhichLayer returns the name of the layer that provides a value.
func (s *Stack) WhichLayer(path string) string {
	_, l, found := s.Get(path)
	if !found {
		return ""
	}
	return l.Name
}

// Update replaces a layer's data entirely.
func (s *Stack) Update(name string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.findLayer(name)
	if l == nil {
		return fmt.Errorf("layer not found: %s", name)
	}

	l.Data = cloneMap(data)
	s.dirty = true
	return nil
}

// findLayer finds a layer by name (must be called with lock held).
func (s *Stack) findLayer(name string) *Layer {
	for _, l := range s.layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}
