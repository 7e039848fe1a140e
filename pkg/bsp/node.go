// Package bsp implements the binary space partitioning tree that the
// boolean engine is built on. A tree holds polygons sorted by successive
// cutting planes; inverting it complements the solid it describes, and
// clipping one tree by another removes the geometry inside the other solid.
//
// Production inputs reach tens of thousands of polygons, so every traversal
// here runs on an explicit work stack instead of native recursion.
package bsp

import (
	"fmt"
	"log/slog"

	"github.com/chazu/tenon/pkg/geom"
)

// Logger receives warnings about polygons dropped during Build. Defaults to
// the process-wide slog logger.
var Logger = slog.Default()

// Node is one partition of space. A node with no plane is an empty leaf; a
// populated node stores the polygons coplanar with its plane and owns
// optional front and back children. Ownership is strictly tree shaped: no
// back-pointers, no sharing.
type Node struct {
	Polygons []geom.Polygon
	Plane    *geom.Plane
	Front    *Node
	Back     *Node
}

// New returns a tree built over the given polygons. Empty input produces an
// empty leaf.
func New(polygons []geom.Polygon) (*Node, error) {
	n := &Node{}
	if len(polygons) > 0 {
		if err := n.Build(polygons); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Build inserts polygons into the tree, splitting them across node planes.
// An empty node adopts the first valid polygon's plane; coplanar polygons
// accumulate on the node and the rest recurse into lazily created children.
// Calling Build again on a populated node refines it in place.
//
// Malformed polygons (non-finite coordinates, too few vertices, degenerate
// plane) are dropped with a warning and never fail the build.
func (n *Node) Build(polygons []geom.Polygon) error {
	if n == nil {
		return fmt.Errorf("bsp: build on nil node")
	}

	type frame struct {
		node  *Node
		polys []geom.Polygon
	}
	stack := []frame{{n, polygons}}

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		polys := filterBuildable(fr.polys)
		if len(polys) == 0 {
			continue
		}
		node := fr.node
		if node.Plane == nil {
			pl := polys[0].Plane
			node.Plane = &pl
		}

		var front, back []geom.Polygon
		for _, p := range polys {
			// Both coplanar buckets land on this node.
			geom.SplitPolygon(*node.Plane, p, &node.Polygons, &node.Polygons, &front, &back)
		}
		if len(front) > 0 {
			if node.Front == nil {
				node.Front = &Node{}
			}
			stack = append(stack, frame{node.Front, front})
		}
		if len(back) > 0 {
			if node.Back == nil {
				node.Back = &Node{}
			}
			stack = append(stack, frame{node.Back, back})
		}
	}
	return nil
}

// filterBuildable drops polygons that would corrupt the tree. The common
// case of all-valid input returns the slice unchanged.
func filterBuildable(polys []geom.Polygon) []geom.Polygon {
	firstBad := -1
	for i := range polys {
		if geom.ValidatePolygon(polys[i]) != nil {
			firstBad = i
			break
		}
	}
	if firstBad == -1 {
		return polys
	}
	out := make([]geom.Polygon, 0, len(polys)-1)
	out = append(out, polys[:firstBad]...)
	for _, p := range polys[firstBad:] {
		if err := geom.ValidatePolygon(p); err != nil {
			Logger.Warn("bsp: dropping invalid polygon", "reason", err)
			continue
		}
		out = append(out, p)
	}
	return out
}

// Invert converts the tree to describe the complement of its solid: every
// polygon and plane flips orientation and the front/back children swap.
func (n *Node) Invert() error {
	if n == nil {
		return fmt.Errorf("bsp: invert on nil node")
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i := range node.Polygons {
			node.Polygons[i].Flip()
		}
		if node.Plane != nil {
			node.Plane.Flip()
		}
		node.Front, node.Back = node.Back, node.Front
		if node.Front != nil {
			stack = append(stack, node.Front)
		}
		if node.Back != nil {
			stack = append(stack, node.Back)
		}
	}
	return nil
}

// ClipPolygons returns the subset of polygons outside the solid this tree
// describes. Geometry sorted to a side with a child recurses into it; a
// missing front child keeps its group as-is, while a missing back child
// marks that side as interior and discards everything sorted there.
func (n *Node) ClipPolygons(polygons []geom.Polygon) ([]geom.Polygon, error) {
	if n == nil {
		return nil, fmt.Errorf("bsp: clip on nil node")
	}

	type frame struct {
		node  *Node
		polys []geom.Polygon
	}
	var out []geom.Polygon
	stack := []frame{{n, polygons}}

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, polys := fr.node, fr.polys
		if len(polys) == 0 {
			continue
		}
		if node.Plane == nil {
			out = append(out, polys...)
			continue
		}

		var front, back []geom.Polygon
		for _, p := range polys {
			geom.SplitPolygon(*node.Plane, p, &front, &back, &front, &back)
		}
		if node.Front != nil {
			stack = append(stack, frame{node.Front, front})
		} else {
			out = append(out, front...)
		}
		if node.Back != nil {
			stack = append(stack, frame{node.Back, back})
		}
	}
	return out, nil
}

// ClipTo replaces every node's polygons with the result of clipping them
// against other. The same other tree applies at every node.
func (n *Node) ClipTo(other *Node) error {
	if n == nil {
		return fmt.Errorf("bsp: clip-to on nil node")
	}
	if other == nil {
		return fmt.Errorf("bsp: clip-to against nil tree")
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		clipped, err := other.ClipPolygons(node.Polygons)
		if err != nil {
			return fmt.Errorf("bsp: clip-to: %w", err)
		}
		node.Polygons = clipped
		if node.Front != nil {
			stack = append(stack, node.Front)
		}
		if node.Back != nil {
			stack = append(stack, node.Back)
		}
	}
	return nil
}

// AllPolygons returns every polygon in the tree in pre-order.
func (n *Node) AllPolygons() []geom.Polygon {
	if n == nil {
		return nil
	}
	var out []geom.Polygon
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		out = append(out, node.Polygons...)
		// Back pushed first so the front subtree is visited first.
		if node.Back != nil {
			stack = append(stack, node.Back)
		}
		if node.Front != nil {
			stack = append(stack, node.Front)
		}
	}
	return out
}

// Clone returns a deep copy sharing no memory with n. Clone before handing
// a tree to any destructive operation so the original survives.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{}
	type pair struct {
		src, dst *Node
	}
	stack := []pair{{n, out}}
	for len(stack) > 0 {
		pr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		src, dst := pr.src, pr.dst
		if src.Plane != nil {
			pl := *src.Plane
			dst.Plane = &pl
		}
		if len(src.Polygons) > 0 {
			dst.Polygons = geom.ClonePolygons(src.Polygons)
		}
		if src.Front != nil {
			dst.Front = &Node{}
			stack = append(stack, pair{src.Front, dst.Front})
		}
		if src.Back != nil {
			dst.Back = &Node{}
			stack = append(stack, pair{src.Back, dst.Back})
		}
	}
	return out
}
