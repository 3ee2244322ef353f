package job

import (
	"math"

	"woodpost/pkg/compile"

	"github.com/asim/quadtree"
)

var zeroPoint = quadtree.NewPoint(0, 0, nil)

// sortDrills reorders the drill operations by nearest-neighbor travel from
// the machine origin, leaving every other operation in place. The target
// machine visits drill points in program order, so a bad order wastes rapid
// travel.
func sortDrills(o *compile.Output) {
	var indices []int
	for i := range o.Operations {
		if o.Operations[i].Type == compile.OpDrill {
			indices = append(indices, i)
		}
	}
	if len(indices) < 2 {
		return
	}

	tree := newDrillTree(o, indices)
	sorted := make([]compile.Operation, 0, len(indices))

	x, y := 0.0, 0.0
	for range indices {
		idx, ok := tree.takeNearest(x, y)
		if !ok {
			break
		}
		op := o.Operations[idx]
		sorted = append(sorted, op)
		x, y = op.X, op.Y
	}
	if len(sorted) != len(indices) {
		// Tree lookup fell short; keep the original order.
		return
	}

	for k, i := range indices {
		o.Operations[i] = sorted[k]
	}
}

type drillTree struct {
	quadTree *quadtree.QuadTree
	ops      *compile.Output
	midX     float64
	midY     float64
	width    float64
	height   float64
}

func newDrillTree(o *compile.Output, indices []int) *drillTree {
	minX, minY := o.Operations[indices[0]].X, o.Operations[indices[0]].Y
	maxX, maxY := minX, minY
	for _, i := range indices {
		op := &o.Operations[i]
		minX = min(minX, op.X)
		minY = min(minY, op.Y)
		maxX = max(maxX, op.X)
		maxY = max(maxY, op.Y)
	}

	midX := (maxX + minX) / 2
	midY := (maxY + minY) / 2
	// A small margin avoids dropping points at the edges.
	halfWidth := maxX - midX + 10
	halfHeight := maxY - midY + 10

	aabb := quadtree.NewAABB(
		quadtree.NewPoint(midX, midY, nil),
		quadtree.NewPoint(halfWidth, halfHeight, nil))
	t := &drillTree{
		quadTree: quadtree.New(aabb, 0, nil),
		ops:      o,
		midX:     midX,
		midY:     midY,
		width:    halfWidth * 2,
		height:   halfHeight * 2,
	}
	for _, i := range indices {
		t.add(o.Operations[i].X, o.Operations[i].Y, i)
	}
	return t
}

func (t *drillTree) add(x, y float64, index int) {
	point := quadtree.NewPoint(x, y, nil)
	points := t.quadTree.KNearest(quadtree.NewAABB(point, zeroPoint), 1, nil)
	if len(points) > 0 {
		pointX, pointY := points[0].Coordinates()
		if pointX == x && pointY == y {
			// Several drills at the same position share one tree point.
			indices := points[0].Data().(map[int]struct{})
			indices[index] = struct{}{}
			return
		}
	}
	indices := map[int]struct{}{index: {}}
	t.quadTree.Insert(quadtree.NewPoint(x, y, indices))
}

// takeNearest returns the operation index closest to (x, y) and removes it
// from the tree.
func (t *drillTree) takeNearest(x, y float64) (int, bool) {
	// Size the search box to cover the whole tree area even when the query
	// point sits outside it, as the machine origin usually does.
	aabb := quadtree.NewAABB(
		quadtree.NewPoint(x, y, nil),
		quadtree.NewPoint(t.width+math.Abs(x-t.midX), t.height+math.Abs(y-t.midY), nil),
	)
	// KNearest's ordering is approximate; fetch a batch and pick the true
	// nearest by distance.
	points := t.quadTree.KNearest(aabb, 8, nil)
	if len(points) == 0 {
		return 0, false
	}
	nearest := points[0]
	bestDist := distanceTo(nearest, x, y)
	for _, p := range points[1:] {
		if d := distanceTo(p, x, y); d < bestDist {
			nearest, bestDist = p, d
		}
	}

	indices := nearest.Data().(map[int]struct{})
	best := -1
	for i := range indices {
		if best < 0 || i < best {
			best = i
		}
	}
	delete(indices, best)
	if len(indices) == 0 {
		t.quadTree.Remove(nearest)
	}
	return best, true
}

func distanceTo(p *quadtree.Point, x, y float64) float64 {
	px, py := p.Coordinates()
	return math.Hypot(px-x, py-y)
}
