package mesh

import "github.com/chewxy/math32"

// FlatNormals computes per-vertex normals by accumulating the unnormalized
// face normal of every incident triangle and normalizing the sums. The
// cross products are area weighted, so larger faces dominate at shared
// vertices. Triangles with out-of-range indices are skipped.
func FlatNormals(vertices []float32, indices []uint32) []float32 {
	normals := make([]float32, len(vertices))
	numVerts := len(vertices) / 3

	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := int(indices[t]), int(indices[t+1]), int(indices[t+2])
		if i0 >= numVerts || i1 >= numVerts || i2 >= numVerts {
			continue
		}

		ax, ay, az := vertices[i0*3], vertices[i0*3+1], vertices[i0*3+2]
		bx, by, bz := vertices[i1*3], vertices[i1*3+1], vertices[i1*3+2]
		cx, cy, cz := vertices[i2*3], vertices[i2*3+1], vertices[i2*3+2]

		e1x, e1y, e1z := bx-ax, by-ay, bz-az
		e2x, e2y, e2z := cx-ax, cy-ay, cz-az

		nx := e1y*e2z - e1z*e2y
		ny := e1z*e2x - e1x*e2z
		nz := e1x*e2y - e1y*e2x

		for _, idx := range [3]int{i0, i1, i2} {
			normals[idx*3+0] += nx
			normals[idx*3+1] += ny
			normals[idx*3+2] += nz
		}
	}

	for i := 0; i < numVerts; i++ {
		nx, ny, nz := normals[i*3], normals[i*3+1], normals[i*3+2]
		l := math32.Sqrt(nx*nx + ny*ny + nz*nz)
		if l > 1e-12 {
			normals[i*3+0] = nx / l
			normals[i*3+1] = ny / l
			normals[i*3+2] = nz / l
		}
	}
	return normals
}
