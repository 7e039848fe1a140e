package geom

import "github.com/go-gl/mathgl/mgl64"

// PlaneRelation classifies geometry against a plane. The values are bit
// flags: ORing per-vertex relations yields the polygon relation, and a
// combined value of RelSpanning means the polygon straddles the plane.
type PlaneRelation int

const (
	RelCoplanar PlaneRelation = 0
	RelFront    PlaneRelation = 1
	RelBack     PlaneRelation = 2
	RelSpanning PlaneRelation = 3
)

func (r PlaneRelation) String() string {
	switch r {
	case RelCoplanar:
		return "coplanar"
	case RelFront:
		return "front"
	case RelBack:
		return "back"
	case RelSpanning:
		return "spanning"
	default:
		return "unknown"
	}
}

// ClassifyPoint returns the side of pl that p lies on, within Epsilon.
func ClassifyPoint(p mgl64.Vec3, pl Plane) PlaneRelation {
	t := pl.SignedDistance(p)
	switch {
	case t < -Epsilon:
		return RelBack
	case t > Epsilon:
		return RelFront
	default:
		return RelCoplanar
	}
}

// ClassifyPolygon ORs the per-vertex relations of p against pl.
func ClassifyPolygon(p Polygon, pl Plane) PlaneRelation {
	rel := RelCoplanar
	for _, v := range p.Vertices {
		rel |= ClassifyPoint(v.Pos, pl)
	}
	return rel
}

// SplitPolygon classifies poly against pl and appends it, or the pieces it
// splits into, to the matching accumulators:
//
//   - wholly coplanar polygons go to coplanarFront or coplanarBack depending
//     on whether their normal agrees with pl's;
//   - wholly front or back polygons pass through unchanged;
//   - spanning polygons are cut along the plane, with a fresh vertex
//     interpolated at every edge crossing.
//
// Split pieces reuse poly's Shared tag and derive their plane from their own
// vertices. A piece left with fewer than three vertices is dropped, not an
// error.
func SplitPolygon(pl Plane, poly Polygon, coplanarFront, coplanarBack, front, back *[]Polygon) {
	types := make([]PlaneRelation, len(poly.Vertices))
	rel := RelCoplanar
	for i, v := range poly.Vertices {
		types[i] = ClassifyPoint(v.Pos, pl)
		rel |= types[i]
	}

	switch rel {
	case RelCoplanar:
		if pl.Normal.Dot(poly.Plane.Normal) > 0 {
			*coplanarFront = append(*coplanarFront, poly)
		} else {
			*coplanarBack = append(*coplanarBack, poly)
		}

	case RelFront:
		*front = append(*front, poly)

	case RelBack:
		*back = append(*back, poly)

	case RelSpanning:
		var f, b []Vertex
		for i := range poly.Vertices {
			j := (i + 1) % len(poly.Vertices)
			ti, tj := types[i], types[j]
			vi, vj := poly.Vertices[i], poly.Vertices[j]
			if ti != RelBack {
				f = append(f, vi)
			}
			if ti != RelFront {
				if ti != RelBack {
					b = append(b, vi.Clone())
				} else {
					b = append(b, vi)
				}
			}
			if ti|tj == RelSpanning {
				t := (pl.W - pl.Normal.Dot(vi.Pos)) / pl.Normal.Dot(vj.Pos.Sub(vi.Pos))
				mid := vi.Interpolate(vj, t)
				f = append(f, mid)
				b = append(b, mid.Clone())
			}
		}
		if len(f) >= 3 {
			if p, err := NewPolygon(f, poly.Shared); err == nil {
				*front = append(*front, p)
			}
		}
		if len(b) >= 3 {
			if p, err := NewPolygon(b, poly.Shared); err == nil {
				*back = append(*back, p)
			}
		}
	}
}
