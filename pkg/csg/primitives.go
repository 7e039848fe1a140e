package csg

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/tenon/pkg/geom"
)

// faceUV assigns the canonical 0..1 texture corners of a quad.
var faceUV = [4]mgl64.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Cube returns an axis-aligned box centered at center with the given half
// extents: six outward-facing quads.
func Cube(center, halfExtents mgl64.Vec3, tag geom.Tag) (*Solid, error) {
	for i := 0; i < 3; i++ {
		if !(halfExtents[i] > 0) {
			return nil, fmt.Errorf("csg: cube half extents must be positive, got %v", halfExtents)
		}
	}

	// Corner index bits select the -/+ extent per axis; each face lists its
	// corners wound outward.
	faces := [6]struct {
		idx    [4]int
		normal mgl64.Vec3
	}{
		{[4]int{0, 4, 6, 2}, mgl64.Vec3{-1, 0, 0}},
		{[4]int{1, 3, 7, 5}, mgl64.Vec3{1, 0, 0}},
		{[4]int{0, 1, 5, 4}, mgl64.Vec3{0, -1, 0}},
		{[4]int{2, 6, 7, 3}, mgl64.Vec3{0, 1, 0}},
		{[4]int{0, 2, 3, 1}, mgl64.Vec3{0, 0, -1}},
		{[4]int{4, 5, 7, 6}, mgl64.Vec3{0, 0, 1}},
	}

	sign := func(bit int) float64 {
		if bit != 0 {
			return 1
		}
		return -1
	}

	polys := make([]geom.Polygon, 0, 6)
	for _, f := range faces {
		verts := make([]geom.Vertex, 4)
		for k, ci := range f.idx {
			pos := mgl64.Vec3{
				center[0] + halfExtents[0]*sign(ci&1),
				center[1] + halfExtents[1]*sign(ci&2),
				center[2] + halfExtents[2]*sign(ci&4),
			}
			verts[k] = geom.Vertex{Pos: pos, Normal: f.normal, UV: faceUV[k]}
		}
		p, err := geom.NewPolygon(verts, tag)
		if err != nil {
			return nil, fmt.Errorf("csg: cube face: %w", err)
		}
		polys = append(polys, p)
	}
	return FromPolygons(polys), nil
}

// UnitCube returns a cube with side 1 centered at center.
func UnitCube(center mgl64.Vec3, tag geom.Tag) (*Solid, error) {
	return Cube(center, mgl64.Vec3{0.5, 0.5, 0.5}, tag)
}

// Sphere approximates a sphere with slices meridians and stacks parallels.
// Cells away from the poles are quads; polar cells are triangles. Non
// positive slices/stacks fall back to 16 and 8.
func Sphere(center mgl64.Vec3, radius float64, slices, stacks int, tag geom.Tag) (*Solid, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("csg: sphere radius must be positive, got %v", radius)
	}
	if slices < 3 {
		slices = 16
	}
	if stacks < 2 {
		stacks = 8
	}

	// u and v are normalized longitude and latitude.
	vertex := func(u, v float64) geom.Vertex {
		theta := u * 2 * math.Pi
		phi := v * math.Pi
		dir := mgl64.Vec3{
			math.Cos(theta) * math.Sin(phi),
			math.Cos(phi),
			math.Sin(theta) * math.Sin(phi),
		}
		return geom.Vertex{
			Pos:    center.Add(dir.Mul(radius)),
			Normal: dir,
			UV:     mgl64.Vec2{u, v},
		}
	}

	var polys []geom.Polygon
	for i := 0; i < slices; i++ {
		u0 := float64(i) / float64(slices)
		u1 := float64(i+1) / float64(slices)
		for j := 0; j < stacks; j++ {
			v0 := float64(j) / float64(stacks)
			v1 := float64(j+1) / float64(stacks)

			verts := make([]geom.Vertex, 0, 4)
			verts = append(verts, vertex(u0, v0))
			if j > 0 {
				verts = append(verts, vertex(u1, v0))
			}
			if j < stacks-1 {
				verts = append(verts, vertex(u1, v1))
			}
			verts = append(verts, vertex(u0, v1))

			p, err := geom.NewPolygon(verts, tag)
			if err != nil {
				// Degenerate cell at extreme tessellation; skip it.
				continue
			}
			polys = append(polys, p)
		}
	}
	return FromPolygons(polys), nil
}

// Cylinder returns a closed cylinder from start to end with the given
// radius, tessellated into slices segments around the axis. Non positive
// slices fall back to 16.
func Cylinder(start, end mgl64.Vec3, radius float64, slices int, tag geom.Tag) (*Solid, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("csg: cylinder radius must be positive, got %v", radius)
	}
	if slices < 3 {
		slices = 16
	}
	ray := end.Sub(start)
	if ray.Len() <= geom.Epsilon {
		return nil, fmt.Errorf("csg: cylinder start and end coincide")
	}

	axisZ := ray.Normalize()
	perp := mgl64.Vec3{0, 1, 0}
	if math.Abs(axisZ[1]) > 0.5 {
		perp = mgl64.Vec3{1, 0, 0}
	}
	axisX := perp.Cross(axisZ).Normalize()
	axisY := axisX.Cross(axisZ).Normalize()

	bottomCenter := geom.Vertex{Pos: start, Normal: axisZ.Mul(-1), UV: mgl64.Vec2{0.5, 0}}
	topCenter := geom.Vertex{Pos: end, Normal: axisZ, UV: mgl64.Vec2{0.5, 1}}

	// stack selects the end (0 or 1), slice the angle, blend how much the
	// normal leans into the axis (-1 bottom cap, 0 wall, 1 top cap).
	point := func(stack, slice, blend float64) geom.Vertex {
		angle := slice * 2 * math.Pi
		out := axisX.Mul(math.Cos(angle)).Add(axisY.Mul(math.Sin(angle)))
		return geom.Vertex{
			Pos:    start.Add(ray.Mul(stack)).Add(out.Mul(radius)),
			Normal: out.Mul(1 - math.Abs(blend)).Add(axisZ.Mul(blend)),
			UV:     mgl64.Vec2{slice, stack},
		}
	}

	polys := make([]geom.Polygon, 0, slices*3)
	for i := 0; i < slices; i++ {
		t0 := float64(i) / float64(slices)
		t1 := float64(i+1) / float64(slices)

		for _, verts := range [][]geom.Vertex{
			{bottomCenter, point(0, t0, -1), point(0, t1, -1)},
			{point(0, t1, 0), point(0, t0, 0), point(1, t0, 0), point(1, t1, 0)},
			{topCenter, point(1, t1, 1), point(1, t0, 1)},
		} {
			p, err := geom.NewPolygon(verts, tag)
			if err != nil {
				return nil, fmt.Errorf("csg: cylinder segment %d: %w", i, err)
			}
			polys = append(polys, p)
		}
	}
	return FromPolygons(polys), nil
}
