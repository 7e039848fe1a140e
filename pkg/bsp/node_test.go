package bsp

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/tenon/pkg/geom"
)

// boxPolygons returns the six quads of an axis-aligned box.
func boxPolygons(t *testing.T, center mgl64.Vec3, half float64) []geom.Polygon {
	t.Helper()

	faces := []struct {
		corners [4]int
		normal  mgl64.Vec3
	}{
		{[4]int{0, 4, 6, 2}, mgl64.Vec3{-1, 0, 0}},
		{[4]int{1, 3, 7, 5}, mgl64.Vec3{1, 0, 0}},
		{[4]int{0, 1, 5, 4}, mgl64.Vec3{0, -1, 0}},
		{[4]int{2, 6, 7, 3}, mgl64.Vec3{0, 1, 0}},
		{[4]int{0, 2, 3, 1}, mgl64.Vec3{0, 0, -1}},
		{[4]int{4, 5, 7, 6}, mgl64.Vec3{0, 0, 1}},
	}
	corner := func(i int) mgl64.Vec3 {
		sign := func(bit int) float64 {
			if i&bit != 0 {
				return 1
			}
			return -1
		}
		return center.Add(mgl64.Vec3{
			half * sign(1),
			half * sign(2),
			half * sign(4),
		})
	}

	polys := make([]geom.Polygon, 0, 6)
	for _, f := range faces {
		verts := make([]geom.Vertex, 4)
		for i, ci := range f.corners {
			verts[i] = geom.Vertex{Pos: corner(ci), Normal: f.normal}
		}
		p, err := geom.NewPolygon(verts, geom.Tag{})
		if err != nil {
			t.Fatalf("box face: %v", err)
		}
		polys = append(polys, p)
	}
	return polys
}

// smallSquare returns a quad on the plane z=z0, centered at the origin.
func smallSquare(t *testing.T, z0, half float64) geom.Polygon {
	t.Helper()
	p, err := geom.NewPolygon([]geom.Vertex{
		{Pos: mgl64.Vec3{-half, -half, z0}, Normal: mgl64.Vec3{0, 0, 1}},
		{Pos: mgl64.Vec3{half, -half, z0}, Normal: mgl64.Vec3{0, 0, 1}},
		{Pos: mgl64.Vec3{half, half, z0}, Normal: mgl64.Vec3{0, 0, 1}},
		{Pos: mgl64.Vec3{-half, half, z0}, Normal: mgl64.Vec3{0, 0, 1}},
	}, geom.Tag{})
	if err != nil {
		t.Fatalf("square: %v", err)
	}
	return p
}

// ---------------------------------------------------------------------------
// Build
// ---------------------------------------------------------------------------

func TestBuildBox(t *testing.T) {
	box := boxPolygons(t, mgl64.Vec3{}, 0.5)
	n, err := New(box)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Box faces never split each other, so the tree returns exactly the
	// input polygons.
	all := n.AllPolygons()
	if len(all) != len(box) {
		t.Fatalf("AllPolygons returned %d polygons, want %d", len(all), len(box))
	}
	for i, p := range all {
		if err := geom.ValidatePolygon(p); err != nil {
			t.Errorf("polygon %d invalid: %v", i, err)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	n, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n.Plane != nil {
		t.Error("empty tree should have no plane")
	}
	if got := n.AllPolygons(); len(got) != 0 {
		t.Errorf("empty tree returned %d polygons", len(got))
	}
}

// polygonSet reduces a soup to a set of quantized vertex-loop keys so two
// soups can be compared regardless of order and duplication.
func polygonSet(polys []geom.Polygon) map[string]bool {
	set := make(map[string]bool)
	for _, p := range polys {
		key := ""
		for _, v := range p.Vertices {
			key += fmt.Sprintf("(%.4f,%.4f,%.4f)", v.Pos[0], v.Pos[1], v.Pos[2])
		}
		set[key] = true
	}
	return set
}

func TestBuildIdempotent(t *testing.T) {
	box := boxPolygons(t, mgl64.Vec3{}, 0.5)

	once, err := New(box)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	twice, err := New(box)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := twice.Build(box); err != nil {
		t.Fatalf("Build: %v", err)
	}

	a := polygonSet(once.AllPolygons())
	b := polygonSet(twice.AllPolygons())
	if len(a) != len(b) {
		t.Fatalf("rebuilding changed the polygon set: %d vs %d distinct polygons", len(a), len(b))
	}
	for key := range a {
		if !b[key] {
			t.Errorf("polygon %s missing after rebuild", key)
		}
	}
}

func TestBuildIncremental(t *testing.T) {
	n, err := New(boxPolygons(t, mgl64.Vec3{}, 0.5))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := len(n.AllPolygons())

	// A disjoint second box lands entirely in existing and new subtrees
	// without being lost.
	if err := n.Build(boxPolygons(t, mgl64.Vec3{5, 0, 0}, 0.5)); err != nil {
		t.Fatalf("Build: %v", err)
	}
	after := len(n.AllPolygons())
	if after < before+6 {
		t.Errorf("incremental build lost polygons: %d before, %d after", before, after)
	}
}

func TestBuildDropsInvalidPolygons(t *testing.T) {
	box := boxPolygons(t, mgl64.Vec3{}, 0.5)
	bad := box[0].Clone()
	bad.Vertices[0].Pos[0] = math.NaN()

	n, err := New(append([]geom.Polygon{bad}, box...))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	all := n.AllPolygons()
	if len(all) != len(box) {
		t.Errorf("got %d polygons, want %d (invalid one dropped)", len(all), len(box))
	}
	for i, p := range all {
		if !geom.FiniteVec(p.Vertices[0].Pos) {
			t.Errorf("polygon %d kept non-finite data", i)
		}
	}
}

// ---------------------------------------------------------------------------
// Invert
// ---------------------------------------------------------------------------

func TestInvertInvolution(t *testing.T) {
	n, err := New(boxPolygons(t, mgl64.Vec3{}, 0.5))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	orig := n.Clone()

	if err := n.Invert(); err != nil {
		t.Fatalf("Invert: %v", err)
	}
	flippedOnce := n.AllPolygons()
	for i, p := range flippedOnce {
		if p.Plane.Normal.Dot(orig.AllPolygons()[i].Plane.Normal) > 0 {
			t.Errorf("polygon %d normal not flipped", i)
		}
	}

	if err := n.Invert(); err != nil {
		t.Fatalf("Invert: %v", err)
	}

	got := n.AllPolygons()
	want := orig.AllPolygons()
	if len(got) != len(want) {
		t.Fatalf("polygon count changed: %d vs %d", len(got), len(want))
	}
	for i := range got {
		if !got[i].Plane.Normal.ApproxEqualThreshold(want[i].Plane.Normal, 1e-12) {
			t.Errorf("polygon %d plane differs after double invert", i)
		}
		for j := range got[i].Vertices {
			if !got[i].Vertices[j].Pos.ApproxEqualThreshold(want[i].Vertices[j].Pos, 1e-12) {
				t.Errorf("polygon %d vertex %d moved after double invert", i, j)
			}
			if !got[i].Vertices[j].Normal.ApproxEqualThreshold(want[i].Vertices[j].Normal, 1e-12) {
				t.Errorf("polygon %d vertex %d normal differs after double invert", i, j)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Clip
// ---------------------------------------------------------------------------

func TestClipPolygons(t *testing.T) {
	n, err := New(boxPolygons(t, mgl64.Vec3{}, 0.5))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	t.Run("inside discarded", func(t *testing.T) {
		out, err := n.ClipPolygons([]geom.Polygon{smallSquare(t, 0, 0.25)})
		if err != nil {
			t.Fatalf("ClipPolygons: %v", err)
		}
		if len(out) != 0 {
			t.Errorf("interior polygon survived: %d pieces", len(out))
		}
	})

	t.Run("outside kept", func(t *testing.T) {
		out, err := n.ClipPolygons([]geom.Polygon{smallSquare(t, 2, 0.25)})
		if err != nil {
			t.Fatalf("ClipPolygons: %v", err)
		}
		if len(out) != 1 {
			t.Fatalf("exterior polygon lost: %d pieces", len(out))
		}
		if len(out[0].Vertices) != 4 {
			t.Errorf("exterior polygon altered: %d vertices", len(out[0].Vertices))
		}
	})

	t.Run("spanning trimmed to exterior", func(t *testing.T) {
		out, err := n.ClipPolygons([]geom.Polygon{smallSquare(t, 0, 2)})
		if err != nil {
			t.Fatalf("ClipPolygons: %v", err)
		}
		if len(out) == 0 {
			t.Fatal("spanning polygon entirely discarded")
		}
		// No surviving piece reaches strictly inside the box.
		for _, p := range out {
			inside := true
			for _, v := range p.Vertices {
				if math.Abs(v.Pos[0]) > 0.5-geom.Epsilon || math.Abs(v.Pos[1]) > 0.5-geom.Epsilon {
					inside = false
					break
				}
			}
			if inside {
				t.Errorf("clipped piece lies inside the solid: %v", p.Vertices[0].Pos)
			}
		}
	})

	t.Run("empty tree passes through", func(t *testing.T) {
		empty, err := New(nil)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		out, err := empty.ClipPolygons([]geom.Polygon{smallSquare(t, 0, 0.25)})
		if err != nil {
			t.Fatalf("ClipPolygons: %v", err)
		}
		if len(out) != 1 {
			t.Errorf("empty tree should keep everything, got %d", len(out))
		}
	})
}

func TestClipTo(t *testing.T) {
	a, err := New(boxPolygons(t, mgl64.Vec3{}, 0.5))
	if err != nil {
		t.Fatalf("New A: %v", err)
	}
	b, err := New(boxPolygons(t, mgl64.Vec3{5, 0, 0}, 0.5))
	if err != nil {
		t.Fatalf("New B: %v", err)
	}

	// Disjoint solids: clipping changes nothing.
	before := len(a.AllPolygons())
	if err := a.ClipTo(b); err != nil {
		t.Fatalf("ClipTo: %v", err)
	}
	if after := len(a.AllPolygons()); after != before {
		t.Errorf("disjoint clip changed polygon count: %d -> %d", before, after)
	}

	// A solid strictly inside another loses every face.
	self, err := New(boxPolygons(t, mgl64.Vec3{}, 0.5))
	if err != nil {
		t.Fatalf("New self: %v", err)
	}
	enclosing, err := New(boxPolygons(t, mgl64.Vec3{}, 2))
	if err != nil {
		t.Fatalf("New enclosing: %v", err)
	}
	if err := self.ClipTo(enclosing); err != nil {
		t.Fatalf("ClipTo: %v", err)
	}
	if n := len(self.AllPolygons()); n != 0 {
		t.Errorf("faces inside enclosing solid survived: %d", n)
	}
}

func TestClipNilArguments(t *testing.T) {
	var nilNode *Node
	if _, err := nilNode.ClipPolygons(nil); err == nil {
		t.Error("expected error clipping on nil node")
	}
	if err := nilNode.ClipTo(&Node{}); err == nil {
		t.Error("expected error on nil receiver")
	}
	if err := (&Node{}).ClipTo(nil); err == nil {
		t.Error("expected error clipping to nil tree")
	}
}

// ---------------------------------------------------------------------------
// Clone
// ---------------------------------------------------------------------------

func TestCloneIndependence(t *testing.T) {
	n, err := New(boxPolygons(t, mgl64.Vec3{}, 0.5))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := n.Clone()

	if err := c.Invert(); err != nil {
		t.Fatalf("Invert: %v", err)
	}

	// The original still describes the uninverted solid.
	for i, p := range n.AllPolygons() {
		inv := c.AllPolygons()[i]
		if p.Plane.Normal.Dot(inv.Plane.Normal) > 0 {
			t.Errorf("polygon %d: clone mutation leaked into original", i)
		}
	}
}

func TestCloneNil(t *testing.T) {
	var n *Node
	if n.Clone() != nil {
		t.Error("cloning nil should return nil")
	}
}
