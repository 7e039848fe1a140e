package geom

import "github.com/go-gl/mathgl/mgl64"

// Vertex is a polygon corner. Position, normal and uv interpolate linearly
// when an edge is split by a plane. Color is optional and carried only when
// the source mesh had vertex colors.
type Vertex struct {
	Pos    mgl64.Vec3
	Normal mgl64.Vec3
	UV     mgl64.Vec2
	Color  *mgl64.Vec4
}

// Interpolate returns the vertex at parameter t along the edge from v to w.
// Every component lerps; color only when both endpoints carry one.
func (v Vertex) Interpolate(w Vertex, t float64) Vertex {
	out := Vertex{
		Pos:    Lerp(v.Pos, w.Pos, t),
		Normal: Lerp(v.Normal, w.Normal, t),
		UV:     lerp2(v.UV, w.UV, t),
	}
	if v.Color != nil && w.Color != nil {
		c := lerp4(*v.Color, *w.Color, t)
		out.Color = &c
	}
	return out
}

// Flip negates the vertex normal in place.
func (v *Vertex) Flip() {
	v.Normal = v.Normal.Mul(-1)
}

// Clone returns a copy that shares no memory with v.
func (v Vertex) Clone() Vertex {
	out := v
	if v.Color != nil {
		c := *v.Color
		out.Color = &c
	}
	return out
}
