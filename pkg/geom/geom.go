// Package geom defines the primitive value types the CSG pipeline is built
// on: planes, vertices, polygons and their epsilon-tolerant classification
// and splitting against planes. Vector algebra comes from go-gl/mathgl.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance for plane classification. Point and polygon
// classification read this single value, so coplanarity decisions never
// disagree between call sites. Tune before building any trees; changing it
// mid-operation gives inconsistent splits.
var Epsilon = 1e-5

// Tag identifies the source mesh and material of a polygon. It survives
// splitting and boolean operations untouched, so the mesh bridge can group
// result polygons back into per-material buffers.
type Tag struct {
	Mesh     int32 `json:"mesh"`
	Material int32 `json:"material"`
}

// Lerp interpolates component-wise between a and b.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func lerp2(a, b mgl64.Vec2, t float64) mgl64.Vec2 {
	return a.Add(b.Sub(a).Mul(t))
}

func lerp4(a, b mgl64.Vec4, t float64) mgl64.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

// FiniteVec reports whether every component of v is finite.
func FiniteVec(v mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return false
		}
	}
	return true
}

func finiteScalar(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
