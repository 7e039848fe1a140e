package csg

import (
	"fmt"

	"github.com/chazu/tenon/pkg/bsp"
	"github.com/chazu/tenon/pkg/geom"
)

// OperationError reports a failed step inside a boolean operation. The
// wrapped error is the failing step's own diagnostic, unchanged; the whole
// operation aborts with no partial result.
type OperationError struct {
	Op   string // "union", "subtract" or "intersect"
	Step string
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("csg: %s: %s: %v", e.Op, e.Step, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Engine runs boolean operations under configured limits. It holds no state
// between calls and every call clones its operands, so a single engine is
// safe for concurrent use.
type Engine struct {
	Limits Limits
}

// NewEngine returns an engine with DefaultLimits.
func NewEngine() *Engine {
	return &Engine{Limits: DefaultLimits}
}

var defaultEngine = NewEngine()

// Union returns a ∪ b using the default engine.
func Union(a, b *Solid) (*Solid, error) { return defaultEngine.Union(a, b) }

// Subtract returns a − b using the default engine.
func Subtract(a, b *Solid) (*Solid, error) { return defaultEngine.Subtract(a, b) }

// Intersect returns a ∩ b using the default engine.
func Intersect(a, b *Solid) (*Solid, error) { return defaultEngine.Intersect(a, b) }

// buildOperands clones both soups into fresh BSP trees so the operation can
// mutate freely without touching the caller's solids.
func buildOperands(op string, a, b *Solid) (*bsp.Node, *bsp.Node, error) {
	ta, err := bsp.New(geom.ClonePolygons(a.Polygons))
	if err != nil {
		return nil, nil, &OperationError{Op: op, Step: "build A", Err: err}
	}
	tb, err := bsp.New(geom.ClonePolygons(b.Polygons))
	if err != nil {
		return nil, nil, &OperationError{Op: op, Step: "build B", Err: err}
	}
	return ta, tb, nil
}

// Union returns the boolean union of a and b.
//
// The clip/invert sequence below is the canonical BSP-CSG identity for
// union and is order sensitive: clipping and inversion do not commute.
func (e *Engine) Union(a, b *Solid) (*Solid, error) {
	const op = "union"
	if err := e.Limits.Check(a, b); err != nil {
		return nil, err
	}
	ta, tb, err := buildOperands(op, a, b)
	if err != nil {
		return nil, err
	}
	if err := ta.ClipTo(tb); err != nil {
		return nil, &OperationError{Op: op, Step: "clip A to B", Err: err}
	}
	if err := tb.ClipTo(ta); err != nil {
		return nil, &OperationError{Op: op, Step: "clip B to A", Err: err}
	}
	if err := tb.Invert(); err != nil {
		return nil, &OperationError{Op: op, Step: "invert B", Err: err}
	}
	// Clipping the inverted B removes B's coplanar faces that duplicate
	// faces kept on A.
	if err := tb.ClipTo(ta); err != nil {
		return nil, &OperationError{Op: op, Step: "clip inverted B to A", Err: err}
	}
	if err := tb.Invert(); err != nil {
		return nil, &OperationError{Op: op, Step: "restore B", Err: err}
	}
	if err := ta.Build(tb.AllPolygons()); err != nil {
		return nil, &OperationError{Op: op, Step: "merge B into A", Err: err}
	}
	return FromPolygons(ta.AllPolygons()), nil
}

// Subtract returns the boolean difference a − b.
func (e *Engine) Subtract(a, b *Solid) (*Solid, error) {
	const op = "subtract"
	if err := e.Limits.Check(a, b); err != nil {
		return nil, err
	}
	ta, tb, err := buildOperands(op, a, b)
	if err != nil {
		return nil, err
	}
	if err := ta.Invert(); err != nil {
		return nil, &OperationError{Op: op, Step: "invert A", Err: err}
	}
	if err := ta.ClipTo(tb); err != nil {
		return nil, &OperationError{Op: op, Step: "clip A to B", Err: err}
	}
	if err := tb.ClipTo(ta); err != nil {
		return nil, &OperationError{Op: op, Step: "clip B to A", Err: err}
	}
	if err := tb.Invert(); err != nil {
		return nil, &OperationError{Op: op, Step: "invert B", Err: err}
	}
	if err := tb.ClipTo(ta); err != nil {
		return nil, &OperationError{Op: op, Step: "clip inverted B to A", Err: err}
	}
	if err := tb.Invert(); err != nil {
		return nil, &OperationError{Op: op, Step: "restore B", Err: err}
	}
	if err := ta.Build(tb.AllPolygons()); err != nil {
		return nil, &OperationError{Op: op, Step: "merge B into A", Err: err}
	}
	if err := ta.Invert(); err != nil {
		return nil, &OperationError{Op: op, Step: "restore A", Err: err}
	}
	return FromPolygons(ta.AllPolygons()), nil
}

// Intersect returns the boolean intersection of a and b.
func (e *Engine) Intersect(a, b *Solid) (*Solid, error) {
	const op = "intersect"
	if err := e.Limits.Check(a, b); err != nil {
		return nil, err
	}
	ta, tb, err := buildOperands(op, a, b)
	if err != nil {
		return nil, err
	}
	if err := ta.Invert(); err != nil {
		return nil, &OperationError{Op: op, Step: "invert A", Err: err}
	}
	if err := tb.ClipTo(ta); err != nil {
		return nil, &OperationError{Op: op, Step: "clip B to A", Err: err}
	}
	if err := tb.Invert(); err != nil {
		return nil, &OperationError{Op: op, Step: "invert B", Err: err}
	}
	if err := ta.ClipTo(tb); err != nil {
		return nil, &OperationError{Op: op, Step: "clip A to B", Err: err}
	}
	if err := tb.ClipTo(ta); err != nil {
		return nil, &OperationError{Op: op, Step: "clip B to clipped A", Err: err}
	}
	if err := ta.Build(tb.AllPolygons()); err != nil {
		return nil, &OperationError{Op: op, Step: "merge B into A", Err: err}
	}
	if err := ta.Invert(); err != nil {
		return nil, &OperationError{Op: op, Step: "restore A", Err: err}
	}
	return FromPolygons(ta.AllPolygons()), nil
}
