package geom

import "fmt"

// Polygon is a convex planar polygon with at least three vertices, wound
// counter-clockwise when viewed from the side its plane normal points to.
// All vertices lie within Epsilon of Plane; splitting violates this only
// transiently and restores it by deriving a fresh plane for every polygon
// it creates.
type Polygon struct {
	Vertices []Vertex
	Plane    Plane
	Shared   Tag
}

// NewPolygon builds a polygon over the given vertices, deriving the plane
// from the first three. The vertex slice is adopted, not copied.
func NewPolygon(vertices []Vertex, shared Tag) (Polygon, error) {
	if len(vertices) < 3 {
		return Polygon{}, fmt.Errorf("geom: polygon needs at least 3 vertices, got %d", len(vertices))
	}
	pl, err := PlaneFromPoints(vertices[0].Pos, vertices[1].Pos, vertices[2].Pos)
	if err != nil {
		return Polygon{}, err
	}
	return Polygon{Vertices: vertices, Plane: pl, Shared: shared}, nil
}

// Flip reverses the winding order and negates every vertex normal and the
// plane, turning the polygon's front face into its back face.
func (p *Polygon) Flip() {
	for i, j := 0, len(p.Vertices)-1; i < j; i, j = i+1, j-1 {
		p.Vertices[i], p.Vertices[j] = p.Vertices[j], p.Vertices[i]
	}
	for i := range p.Vertices {
		p.Vertices[i].Flip()
	}
	p.Plane.Flip()
}

// Clone returns a deep copy sharing no memory with p.
func (p Polygon) Clone() Polygon {
	verts := make([]Vertex, len(p.Vertices))
	for i, v := range p.Vertices {
		verts[i] = v.Clone()
	}
	return Polygon{Vertices: verts, Plane: p.Plane, Shared: p.Shared}
}

// ClonePolygons deep-copies a polygon slice.
func ClonePolygons(polys []Polygon) []Polygon {
	if polys == nil {
		return nil
	}
	out := make([]Polygon, len(polys))
	for i, p := range polys {
		out[i] = p.Clone()
	}
	return out
}

// ValidatePolygon reports why a polygon is unusable for tree construction,
// or nil when it is fine. Checked: at least three vertices, finite
// coordinates, a valid unit plane, and no two coincident vertices.
func ValidatePolygon(p Polygon) error {
	if len(p.Vertices) < 3 {
		return fmt.Errorf("geom: polygon has %d vertices, need at least 3", len(p.Vertices))
	}
	for i, v := range p.Vertices {
		if !FiniteVec(v.Pos) {
			return fmt.Errorf("geom: vertex %d has non-finite position", i)
		}
		if !FiniteVec(v.Normal) {
			return fmt.Errorf("geom: vertex %d has non-finite normal", i)
		}
	}
	if !p.Plane.Valid() {
		return fmt.Errorf("geom: polygon plane is degenerate (normal length %v)", p.Plane.Normal.Len())
	}
	for i := 0; i < len(p.Vertices); i++ {
		for j := i + 1; j < len(p.Vertices); j++ {
			if p.Vertices[i].Pos.ApproxEqualThreshold(p.Vertices[j].Pos, Epsilon) {
				return fmt.Errorf("geom: vertices %d and %d are coincident", i, j)
			}
		}
	}
	return nil
}
