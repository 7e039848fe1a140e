package csg

import (
	"fmt"

	"github.com/chazu/tenon/pkg/geom"
)

// Finding reports one element dropped or flagged during soup sanitation.
// Findings are advisory: malformed geometry is a local condition handled by
// exclusion, never a failure of the surrounding operation.
type Finding struct {
	Index   int // position of the offending element in its input sequence
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("element %d: %s", f.Index, f.Message)
}

// Sanitize drops malformed polygons from a soup, returning the survivors
// and one finding per dropped polygon. The input slice is not modified.
func Sanitize(polys []geom.Polygon) ([]geom.Polygon, []Finding) {
	out := make([]geom.Polygon, 0, len(polys))
	var findings []Finding
	for i, p := range polys {
		if err := geom.ValidatePolygon(p); err != nil {
			findings = append(findings, Finding{Index: i, Message: err.Error()})
			continue
		}
		out = append(out, p)
	}
	return out, findings
}
