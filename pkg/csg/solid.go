// Package csg implements boolean solid modeling over polygon soups. Solids
// are plain polygon collections; the boolean operations clone them into BSP
// trees (pkg/bsp), run a fixed clip/invert sequence and flatten the result
// back to a soup. Callers never see their inputs mutated.
package csg

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/tenon/pkg/geom"
)

// Solid is a polygon soup: an ordered collection of polygons with no
// guaranteed connectivity or globally consistent winding. It is the only
// boundary type the engine exposes.
type Solid struct {
	Polygons []geom.Polygon
}

// FromPolygons adopts polys as a solid. The slice is not copied.
func FromPolygons(polys []geom.Polygon) *Solid {
	return &Solid{Polygons: polys}
}

// Clone returns a deep copy sharing no memory with s.
func (s *Solid) Clone() *Solid {
	if s == nil {
		return &Solid{}
	}
	return &Solid{Polygons: geom.ClonePolygons(s.Polygons)}
}

// Inverse returns the solid/void complement: a clone with every polygon's
// winding, normals and plane flipped. No BSP tree is involved.
func (s *Solid) Inverse() *Solid {
	out := s.Clone()
	for i := range out.Polygons {
		out.Polygons[i].Flip()
	}
	return out
}

// Translate returns a clone of s moved by delta.
func (s *Solid) Translate(delta mgl64.Vec3) *Solid {
	out := s.Clone()
	for i := range out.Polygons {
		p := &out.Polygons[i]
		for j := range p.Vertices {
			p.Vertices[j].Pos = p.Vertices[j].Pos.Add(delta)
		}
		p.Plane.W += p.Plane.Normal.Dot(delta)
	}
	return out
}

// BoundingBox returns the axis-aligned bounds of every vertex. An empty
// solid yields zero bounds.
func (s *Solid) BoundingBox() (min, max mgl64.Vec3) {
	first := true
	for _, p := range s.Polygons {
		for _, v := range p.Vertices {
			if first {
				min, max = v.Pos, v.Pos
				first = false
				continue
			}
			for i := 0; i < 3; i++ {
				min[i] = math.Min(min[i], v.Pos[i])
				max[i] = math.Max(max[i], v.Pos[i])
			}
		}
	}
	return min, max
}

// VertexCount returns the total number of vertices across all polygons.
func (s *Solid) VertexCount() int {
	n := 0
	for _, p := range s.Polygons {
		n += len(p.Vertices)
	}
	return n
}

// TriangleCount returns the number of triangles a fan tessellation of the
// soup would produce.
func (s *Solid) TriangleCount() int {
	n := 0
	for _, p := range s.Polygons {
		if t := len(p.Vertices) - 2; t > 0 {
			n += t
		}
	}
	return n
}
