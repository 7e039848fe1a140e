package csg

import "fmt"

// Limits are pre-flight ceilings on operand size. Boolean operations reject
// oversized inputs before any tree work begins, so a runaway soup fails
// fast instead of exhausting memory mid-operation. A zero or negative
// ceiling disables that check.
type Limits struct {
	MaxPolygons  int
	MaxVertices  int
	MaxTriangles int
}

// DefaultLimits admits meshes well beyond typical production inputs while
// still catching pathological soups.
var DefaultLimits = Limits{
	MaxPolygons:  200_000,
	MaxVertices:  1_000_000,
	MaxTriangles: 600_000,
}

// LimitError reports a pre-flight rejection of an oversized operand.
type LimitError struct {
	Quantity string // "polygons", "vertices" or "triangles"
	Count    int
	Max      int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("csg: input exceeds limits: %d %s (max %d)", e.Count, e.Quantity, e.Max)
}

// Check validates every solid against the ceilings.
func (l Limits) Check(solids ...*Solid) error {
	for _, s := range solids {
		if s == nil {
			continue
		}
		if n := len(s.Polygons); l.MaxPolygons > 0 && n > l.MaxPolygons {
			return &LimitError{Quantity: "polygons", Count: n, Max: l.MaxPolygons}
		}
		if n := s.VertexCount(); l.MaxVertices > 0 && n > l.MaxVertices {
			return &LimitError{Quantity: "vertices", Count: n, Max: l.MaxVertices}
		}
		if n := s.TriangleCount(); l.MaxTriangles > 0 && n > l.MaxTriangles {
			return &LimitError{Quantity: "triangles", Count: n, Max: l.MaxTriangles}
		}
	}
	return nil
}
