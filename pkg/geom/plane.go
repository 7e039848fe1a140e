package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane is the set of points p with Normal·p = W. Normal is unit length
// within Epsilon.
type Plane struct {
	Normal mgl64.Vec3
	W      float64
}

// PlaneFromPoints derives the plane through a, b and c with normal
// (b−a)×(c−a), normalized. Collinear or non-finite points are an error.
func PlaneFromPoints(a, b, c mgl64.Vec3) (Plane, error) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if !finiteScalar(l) || l < Epsilon {
		return Plane{}, fmt.Errorf("geom: degenerate plane: points %v, %v, %v are collinear or non-finite", a, b, c)
	}
	n = n.Mul(1 / l)
	return Plane{Normal: n, W: n.Dot(a)}, nil
}

// SignedDistance returns Normal·p − W: positive in front of the plane,
// negative behind it.
func (pl Plane) SignedDistance(p mgl64.Vec3) float64 {
	return pl.Normal.Dot(p) - pl.W
}

// Flip reverses the plane orientation in place.
func (pl *Plane) Flip() {
	pl.Normal = pl.Normal.Mul(-1)
	pl.W = -pl.W
}

// Valid reports whether the plane is finite with a unit normal (within
// Epsilon).
func (pl Plane) Valid() bool {
	if !FiniteVec(pl.Normal) || !finiteScalar(pl.W) {
		return false
	}
	return math.Abs(pl.Normal.Len()-1) <= Epsilon
}
