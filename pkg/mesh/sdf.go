package mesh

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/tenon/pkg/csg"
	"github.com/chazu/tenon/pkg/geom"
)

// defaultSDFCells controls marching cubes tessellation resolution when the
// caller passes a non-positive cell count.
const defaultSDFCells = 200

// FromSDF tessellates a signed distance field into a polygon soup using
// uniform marching cubes, so SDF-modeled shapes can enter the boolean
// pipeline. Every triangle gets its face normal at all three corners.
// Degenerate triangles out of the tessellator are dropped as findings.
func FromSDF(s sdf.SDF3, cells int, tag geom.Tag) (*csg.Solid, []csg.Finding) {
	if cells <= 0 {
		cells = defaultSDFCells
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	polys := make([]geom.Polygon, 0, len(triangles))
	var findings []csg.Finding
	for i, tri := range triangles {
		n := tri.Normal()
		normal := mgl64.Vec3{n.X, n.Y, n.Z}

		verts := make([]geom.Vertex, 3)
		for j := 0; j < 3; j++ {
			verts[j] = geom.Vertex{
				Pos:    mgl64.Vec3{tri[j].X, tri[j].Y, tri[j].Z},
				Normal: normal,
			}
		}
		p, err := geom.NewPolygon(verts, tag)
		if err != nil {
			findings = append(findings, csg.Finding{Index: i, Message: err.Error()})
			continue
		}
		if err := geom.ValidatePolygon(p); err != nil {
			findings = append(findings, csg.Finding{Index: i, Message: err.Error()})
			continue
		}
		polys = append(polys, p)
	}
	return csg.FromPolygons(polys), findings
}
