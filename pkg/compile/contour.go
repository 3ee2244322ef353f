package compile

import (
	"math"

	"woodpost/pkg/cfg"
	"woodpost/pkg/geometry"
	"woodpost/pkg/motion"
)

// StartPoint is the position prior to the first position-affecting command
// of a stream.
type StartPoint struct {
	X, Y, Z float64
}

// ExtractContour walks a motion-command stream and produces the ordered
// contour elements plus the contour start position.
//
// Rapid moves are included as line elements only when includeRapids is set,
// or when they occur between working moves: the host's approach and retract
// rapids must not pollute the contour (the target machine generates its own),
// but a rapid inside the cut path is part of the contour. With includeRapids
// off, rapids strictly before the first working move and strictly after the
// last one only update the running position.
//
// Arcs whose Z changes are discretized into line segments, since the target
// format restricts arcs to a single plane.
func ExtractContour(cmds []motion.Command, includeRapids bool) ([]Element, StartPoint) {
	var elements []Element
	var cur geometry.Point3
	var start *StartPoint

	// With rapid inclusion off, locate the first and last working moves so
	// leading and trailing rapid chains can be skipped.
	firstWorking, lastWorking := -1, -1
	if !includeRapids {
		for i, cmd := range cmds {
			if cmd.IsWorking() {
				if firstWorking < 0 {
					firstWorking = i
				}
				lastWorking = i
			}
		}
	}

	for i, cmd := range cmds {
		x := cmd.Param("X", cur.X)
		y := cmd.Param("Y", cur.Y)
		z := cmd.Param("Z", cur.Z)

		// The start position is the position prior to the first move.
		if start == nil && cmd.IsMove() {
			start = &StartPoint{X: cur.X, Y: cur.Y, Z: cur.Z}
		}

		switch {
		case cmd.IsRapid():
			dx := math.Abs(x - cur.X)
			dy := math.Abs(y - cur.Y)
			dz := math.Abs(z - cur.Z)
			if dx < cfg.Epsilon && dy < cfg.Epsilon && dz < cfg.Epsilon {
				break // zero-length rapid, position update only
			}
			if !includeRapids && firstWorking >= 0 {
				if i < firstWorking || i > lastWorking {
					break // approach/retract rapid, position update only
				}
			}
			elements = append(elements, Element{
				Kind: KindLine, X: x, Y: y, Z: z, MoveType: "G0",
			})

		case cmd.IsLinear():
			dx := math.Abs(x - cur.X)
			dy := math.Abs(y - cur.Y)
			dz := math.Abs(z - cur.Z)
			if dx < cfg.Epsilon && dy < cfg.Epsilon && dz < cfg.Epsilon {
				break // zero-length segment
			}
			elements = append(elements, Element{
				Kind: KindLine, X: x, Y: y, Z: z, MoveType: "G1",
			})

		case cmd.IsArc():
			elements = append(elements, arcElements(cmd, cur, x, y, z)...)
		}

		cur = geometry.Point3{X: x, Y: y, Z: z}
	}

	if start == nil {
		start = &StartPoint{}
	}
	return elements, *start
}

// arcElements compiles one arc command starting at cur and ending at (x, y, z).
// A planar arc becomes a single arc element with a derived midpoint; an arc
// with a Z change becomes a run of line segments interpolating Z linearly.
func arcElements(cmd motion.Command, cur geometry.Point3, x, y, z float64) []Element {
	i := cmd.Param("I", 0)
	j := cmd.Param("J", 0)
	clockwise := cmd.IsClockwise()

	center := geometry.Point{X: cur.X + i, Y: cur.Y + j}
	radius := math.Hypot(i, j)

	startAngle := geometry.Angle(center, geometry.Point{X: cur.X, Y: cur.Y})
	endAngle := geometry.Angle(center, geometry.Point{X: x, Y: y})
	endAngle = geometry.NormalizeArcEnd(startAngle, endAngle, clockwise)

	if math.Abs(z-cur.Z) > cfg.Epsilon {
		// Helical sweep: the format has no 3D arcs.
		sweep := endAngle - startAngle
		segments := int(math.Round(math.Abs(sweep) * 180 / math.Pi / cfg.ArcSegmentDegrees))
		if segments < cfg.MinArcSegments {
			segments = cfg.MinArcSegments
		}
		elements := make([]Element, 0, segments)
		for seg := 1; seg <= segments; seg++ {
			t := float64(seg) / float64(segments)
			angle := startAngle + sweep*t
			elements = append(elements, Element{
				Kind:     KindLine,
				X:        center.X + radius*math.Cos(angle),
				Y:        center.Y + radius*math.Sin(angle),
				Z:        cur.Z + (z-cur.Z)*t,
				MoveType: "G1",
			})
		}
		return elements
	}

	midAngle := (startAngle + endAngle) / 2
	return []Element{{
		Kind:      KindArc,
		X:         x,
		Y:         y,
		Z:         z,
		I:         i,
		J:         j,
		R:         radius,
		Clockwise: clockwise,
		MidX:      center.X + radius*math.Cos(midAngle),
		MidY:      center.Y + radius*math.Sin(midAngle),
	}}
}
