// Package mesh bridges between the csg polygon soup and flat, renderable
// triangle buffers. It is the only place the repository speaks in vertex
// and index arrays; the boolean engine itself never does.
package mesh

// Mesh is a triangle mesh suitable for rendering. All arrays are flat:
// Vertices and Normals hold 3 floats per vertex, UVs 2 floats per vertex,
// Indices 3 uint32 per triangle. One Mesh carries one material.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	UVs      []float32 `json:"uvs,omitempty"`
	Indices  []uint32  `json:"indices"` // [i0,i1,i2, ...] triangles
	Material int32     `json:"material"`
	Name     string    `json:"name,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}
