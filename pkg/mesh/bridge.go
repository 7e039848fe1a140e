package mesh

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/tenon/pkg/csg"
	"github.com/chazu/tenon/pkg/geom"
)

// FromSolid converts a solid into renderable meshes, one per distinct
// polygon tag, in first-seen order. Polygons are fan-triangulated and
// identical vertices are welded within each mesh.
func FromSolid(s *csg.Solid) []*Mesh {
	if s == nil || len(s.Polygons) == 0 {
		return nil
	}
	var order []geom.Tag
	groups := make(map[geom.Tag][]geom.Polygon)
	for _, p := range s.Polygons {
		if _, ok := groups[p.Shared]; !ok {
			order = append(order, p.Shared)
		}
		groups[p.Shared] = append(groups[p.Shared], p)
	}
	meshes := make([]*Mesh, 0, len(order))
	for _, tag := range order {
		meshes = append(meshes, buildMesh(tag, groups[tag]))
	}
	return meshes
}

// weldKey is the exact float32 image of a vertex: position, normal, uv.
// Vertices welding to the same key share one buffer slot.
type weldKey [8]float32

func buildMesh(tag geom.Tag, polys []geom.Polygon) *Mesh {
	m := &Mesh{Material: tag.Material}
	seen := make(map[weldKey]uint32)

	index := func(v geom.Vertex) uint32 {
		key := weldKey{
			float32(v.Pos[0]), float32(v.Pos[1]), float32(v.Pos[2]),
			float32(v.Normal[0]), float32(v.Normal[1]), float32(v.Normal[2]),
			float32(v.UV[0]), float32(v.UV[1]),
		}
		if idx, ok := seen[key]; ok {
			return idx
		}
		idx := uint32(len(m.Vertices) / 3)
		m.Vertices = append(m.Vertices, key[0], key[1], key[2])
		m.Normals = append(m.Normals, key[3], key[4], key[5])
		m.UVs = append(m.UVs, key[6], key[7])
		seen[key] = idx
		return idx
	}

	for _, p := range polys {
		if len(p.Vertices) < 3 {
			continue
		}
		i0 := index(p.Vertices[0])
		for k := 1; k+1 < len(p.Vertices); k++ {
			m.Indices = append(m.Indices, i0, index(p.Vertices[k]), index(p.Vertices[k+1]))
		}
	}
	return m
}

// ToSolid converts triangle meshes back into a polygon soup. Mesh i
// contributes triangles tagged {Mesh: i, Material: m.Material}. Vertex
// normals come from the buffers, recomputed flat when the normal buffer is
// missing or short. Degenerate or out-of-range triangles are dropped and
// reported as findings, never errors.
func ToSolid(meshes ...*Mesh) (*csg.Solid, []csg.Finding) {
	var polys []geom.Polygon
	var findings []csg.Finding

	for mi, m := range meshes {
		if m == nil || m.IsEmpty() {
			continue
		}
		normals := m.Normals
		if len(normals) < len(m.Vertices) {
			normals = FlatNormals(m.Vertices, m.Indices)
		}
		tag := geom.Tag{Mesh: int32(mi), Material: m.Material}

		for t := 0; t+2 < len(m.Indices); t += 3 {
			verts := make([]geom.Vertex, 3)
			inRange := true
			for k := 0; k < 3; k++ {
				idx := int(m.Indices[t+k])
				if idx*3+2 >= len(m.Vertices) {
					inRange = false
					break
				}
				verts[k] = geom.Vertex{
					Pos:    vec3At(m.Vertices, idx),
					Normal: vec3At(normals, idx),
				}
				if idx*2+1 < len(m.UVs) {
					verts[k].UV = mgl64.Vec2{float64(m.UVs[idx*2]), float64(m.UVs[idx*2+1])}
				}
			}
			if !inRange {
				findings = append(findings, csg.Finding{Index: t / 3, Message: "triangle index out of range"})
				continue
			}
			p, err := geom.NewPolygon(verts, tag)
			if err != nil {
				findings = append(findings, csg.Finding{Index: t / 3, Message: err.Error()})
				continue
			}
			if err := geom.ValidatePolygon(p); err != nil {
				findings = append(findings, csg.Finding{Index: t / 3, Message: err.Error()})
				continue
			}
			polys = append(polys, p)
		}
	}
	return csg.FromPolygons(polys), findings
}

func vec3At(buf []float32, idx int) mgl64.Vec3 {
	if idx*3+2 >= len(buf) {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{
		float64(buf[idx*3]),
		float64(buf[idx*3+1]),
		float64(buf[idx*3+2]),
	}
}
