package script

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/tenon/pkg/geom"
)

func evalOK(t *testing.T, source string) *Scene {
	t.Helper()
	eng := NewEngine()
	scene, errs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(errs) > 0 {
		t.Fatalf("eval errors: %v", errs)
	}
	if scene == nil {
		t.Fatal("expected non-nil scene")
	}
	return scene
}

func evalErrs(t *testing.T, source string) []EvalError {
	t.Helper()
	eng := NewEngine()
	scene, errs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(errs) == 0 {
		t.Fatal("expected eval errors")
	}
	if scene != nil {
		t.Error("expected nil scene alongside eval errors")
	}
	return errs
}

// ---------------------------------------------------------------------------
// Evaluation basics
// ---------------------------------------------------------------------------

func TestEvaluateEmptySource(t *testing.T) {
	for _, src := range []string{"", "   \n\t  "} {
		scene := evalOK(t, src)
		if scene.Count() != 0 {
			t.Errorf("empty source produced %d solids", scene.Count())
		}
	}
}

func TestEvaluateComments(t *testing.T) {
	scene := evalOK(t, `
; a comment before anything
(defsolid "box" (cube :size 1)) ; trailing comment
;; closing remarks
`)
	if scene.Count() != 1 {
		t.Fatalf("scene has %d solids, want 1", scene.Count())
	}
}

func TestSimpleCube(t *testing.T) {
	scene := evalOK(t, `(defsolid "box" (cube :size 2 :material 3))`)

	if scene.Count() != 1 {
		t.Fatalf("scene has %d solids, want 1", scene.Count())
	}
	box := scene.Lookup("box")
	if box == nil {
		t.Fatal("expected solid named 'box'")
	}
	if len(box.Polygons) != 6 {
		t.Fatalf("cube has %d faces, want 6", len(box.Polygons))
	}
	min, max := box.BoundingBox()
	if !min.ApproxEqualThreshold(mgl64.Vec3{-1, -1, -1}, geom.Epsilon) {
		t.Errorf("min = %v, want (-1,-1,-1)", min)
	}
	if !max.ApproxEqualThreshold(mgl64.Vec3{1, 1, 1}, geom.Epsilon) {
		t.Errorf("max = %v, want (1,1,1)", max)
	}
	for i, p := range box.Polygons {
		if p.Shared.Material != 3 {
			t.Errorf("face %d material = %d, want 3", i, p.Shared.Material)
		}
	}
}

func TestCubeHalfAndCenter(t *testing.T) {
	scene := evalOK(t, `(defsolid "slab" (cube :half (vec3 2 0.5 1) :center (vec3 10 0 0)))`)

	slab := scene.Lookup("slab")
	if slab == nil {
		t.Fatal("expected solid named 'slab'")
	}
	min, max := slab.BoundingBox()
	if !min.ApproxEqualThreshold(mgl64.Vec3{8, -0.5, -1}, geom.Epsilon) {
		t.Errorf("min = %v", min)
	}
	if !max.ApproxEqualThreshold(mgl64.Vec3{12, 0.5, 1}, geom.Epsilon) {
		t.Errorf("max = %v", max)
	}
}

func TestSphereAndCylinder(t *testing.T) {
	scene := evalOK(t, `
(defsolid "ball" (sphere :radius 2 :slices 8 :stacks 4))
(defsolid "rod" (cylinder :start (vec3 0 -3 0) :end (vec3 0 3 0) :radius 0.5 :slices 6))
`)
	ball := scene.Lookup("ball")
	if ball == nil {
		t.Fatal("expected solid named 'ball'")
	}
	if got := len(ball.Polygons); got != 8*4 {
		t.Errorf("sphere has %d cells, want %d", got, 8*4)
	}

	rod := scene.Lookup("rod")
	if rod == nil {
		t.Fatal("expected solid named 'rod'")
	}
	if got := len(rod.Polygons); got != 6*3 {
		t.Errorf("cylinder has %d polygons, want %d", got, 6*3)
	}
}

func TestTranslate(t *testing.T) {
	scene := evalOK(t, `(defsolid "moved" (translate (cube :size 1) (vec3 5 0 0)))`)

	moved := scene.Lookup("moved")
	min, max := moved.BoundingBox()
	if !min.ApproxEqualThreshold(mgl64.Vec3{4.5, -0.5, -0.5}, geom.Epsilon) {
		t.Errorf("min = %v", min)
	}
	if !max.ApproxEqualThreshold(mgl64.Vec3{5.5, 0.5, 0.5}, geom.Epsilon) {
		t.Errorf("max = %v", max)
	}
}

// ---------------------------------------------------------------------------
// Booleans from scripts
// ---------------------------------------------------------------------------

func TestUnionOfDisjointCubes(t *testing.T) {
	scene := evalOK(t, `
(defsolid "pair"
  (union (cube :size 1)
         (translate (cube :size 1) (vec3 5 0 0))))
`)
	pair := scene.Lookup("pair")
	if pair == nil {
		t.Fatal("expected solid named 'pair'")
	}
	if got := len(pair.Polygons); got != 12 {
		t.Errorf("disjoint union has %d polygons, want 12", got)
	}
}

func TestDifference(t *testing.T) {
	scene := evalOK(t, `
(defsolid "notched"
  (difference (cube :size 2)
              (translate (cube :size 2) (vec3 2 0 0))))
`)
	notched := scene.Lookup("notched")
	if notched == nil {
		t.Fatal("expected solid named 'notched'")
	}
	min, max := notched.BoundingBox()
	if !min.ApproxEqualThreshold(mgl64.Vec3{-1, -1, -1}, geom.Epsilon) {
		t.Errorf("min = %v", min)
	}
	if !max.ApproxEqualThreshold(mgl64.Vec3{1, 1, 1}, geom.Epsilon) {
		t.Errorf("max = %v, want (1,1,1)", max)
	}
}

func TestIntersectFromScript(t *testing.T) {
	scene := evalOK(t, `
(defsolid "core"
  (intersect (cube :size 2)
             (translate (cube :size 2) (vec3 1 0 0))))
`)
	core := scene.Lookup("core")
	if core == nil {
		t.Fatal("expected solid named 'core'")
	}
	min, max := core.BoundingBox()
	if !min.ApproxEqualThreshold(mgl64.Vec3{0, -1, -1}, geom.Epsilon) {
		t.Errorf("min = %v, want (0,-1,-1)", min)
	}
	if !max.ApproxEqualThreshold(mgl64.Vec3{1, 1, 1}, geom.Epsilon) {
		t.Errorf("max = %v, want (1,1,1)", max)
	}
}

func TestInverseFromScript(t *testing.T) {
	scene := evalOK(t, `(defsolid "void" (inverse (cube :size 1)))`)

	void := scene.Lookup("void")
	if void == nil {
		t.Fatal("expected solid named 'void'")
	}
	if len(void.Polygons) != 6 {
		t.Fatalf("inverse has %d faces, want 6", len(void.Polygons))
	}
	// Every face points at the old interior.
	for i, p := range void.Polygons {
		if p.Plane.SignedDistance(mgl64.Vec3{}) <= 0 {
			t.Errorf("face %d still points outward", i)
		}
	}
}

func TestSolidReference(t *testing.T) {
	scene := evalOK(t, `
(defsolid "base" (cube :size 1))
(defsolid "both"
  (union (solid "base")
         (translate (solid "base") (vec3 3 0 0))))
`)
	if scene.Count() != 2 {
		t.Fatalf("scene has %d solids, want 2", scene.Count())
	}
	both := scene.Lookup("both")
	if both == nil {
		t.Fatal("expected solid named 'both'")
	}
	if got := len(both.Polygons); got != 12 {
		t.Errorf("combined solid has %d polygons, want 12", got)
	}
}

func TestPrimitivesGetDistinctMeshTags(t *testing.T) {
	scene := evalOK(t, `
(defsolid "a" (cube :size 1))
(defsolid "b" (cube :size 1))
`)
	a := scene.Lookup("a")
	b := scene.Lookup("b")
	if a.Polygons[0].Shared.Mesh == b.Polygons[0].Shared.Mesh {
		t.Error("separate primitives share a mesh tag")
	}
}

// ---------------------------------------------------------------------------
// Error reporting
// ---------------------------------------------------------------------------

func TestParseError(t *testing.T) {
	errs := evalErrs(t, `(defsolid "broken" (cube :size 1)`)
	if errs[0].Message == "" {
		t.Error("expected a diagnostic message")
	}
}

func TestDuplicateSolidName(t *testing.T) {
	errs := evalErrs(t, `
(defsolid "twice" (cube :size 1))
(defsolid "twice" (cube :size 2))
`)
	found := false
	for _, e := range errs {
		if strings.Contains(e.Message, "already defined") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate-name diagnostic, got %v", errs)
	}
}

func TestBadArgumentType(t *testing.T) {
	errs := evalErrs(t, `(defsolid "bad" (cube :size "big"))`)
	found := false
	for _, e := range errs {
		if strings.Contains(e.Message, "expected number") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected type diagnostic, got %v", errs)
	}
}

func TestUnknownSolidReference(t *testing.T) {
	errs := evalErrs(t, `(defsolid "x" (solid "missing"))`)
	found := false
	for _, e := range errs {
		if strings.Contains(e.Message, "missing") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unknown-solid diagnostic, got %v", errs)
	}
}

func TestBadPrimitiveArguments(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"negative sphere radius", `(defsolid "s" (sphere :radius -1))`},
		{"degenerate cylinder", `(defsolid "c" (cylinder :start (vec3 0 0 0) :end (vec3 0 0 0)))`},
		{"vec3 arity", `(defsolid "v" (cube :center (vec3 1 2)))`},
		{"union arity", `(defsolid "u" (union (cube :size 1)))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalErrs(t, tt.source)
		})
	}
}
