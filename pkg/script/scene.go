package script

import (
	"fmt"

	"github.com/chazu/tenon/pkg/csg"
)

// SceneSolid is one named solid registered by a script.
type SceneSolid struct {
	Name  string
	Solid *csg.Solid
}

// Scene collects the solids a single evaluation produced, in definition
// order. Only solids registered with (defsolid ...) appear here.
type Scene struct {
	Solids []SceneSolid

	names    map[string]int
	nextMesh int32
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{names: make(map[string]int)}
}

// Lookup returns the solid registered under name, or nil.
func (s *Scene) Lookup(name string) *csg.Solid {
	if i, ok := s.names[name]; ok {
		return s.Solids[i].Solid
	}
	return nil
}

// Count returns the number of registered solids.
func (s *Scene) Count() int {
	return len(s.Solids)
}

// add registers a solid under a unique name.
func (s *Scene) add(name string, solid *csg.Solid) error {
	if name == "" {
		return fmt.Errorf("solid name must not be empty")
	}
	if _, exists := s.names[name]; exists {
		return fmt.Errorf("solid %q already defined", name)
	}
	s.names[name] = len(s.Solids)
	s.Solids = append(s.Solids, SceneSolid{Name: name, Solid: solid})
	return nil
}

// nextMeshID hands out mesh tags for primitives so each one groups into its
// own buffer at the bridge.
func (s *Scene) nextMeshID() int32 {
	id := s.nextMesh
	s.nextMesh++
	return id
}
