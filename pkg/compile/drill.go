package compile

import (
	"math"

	"woodpost/pkg/motion"
)

// ExtractDrills walks a motion-command stream and produces one drill
// operation per canned drilling cycle. The running position is tracked
// through rapid and linear moves; a cycle without explicit X/Y drills at the
// current position. Depth is measured from the retract height R when one is
// given, from zero otherwise.
func ExtractDrills(cmds []motion.Command, tool int) []Operation {
	var ops []Operation
	var curX, curY, curZ float64

	for _, cmd := range cmds {
		switch {
		case cmd.IsDrill():
			x := cmd.Param("X", curX)
			y := cmd.Param("Y", curY)
			z := cmd.Param("Z", curZ)
			r := cmd.Param("R", 0)

			depth := math.Abs(z)
			if r != 0 {
				depth = math.Abs(z - r)
			}

			ops = append(ops, Operation{
				Type:  OpDrill,
				Tool:  tool,
				X:     x,
				Y:     y,
				Depth: depth,
			})
			curX, curY = x, y

		case cmd.IsRapid() || cmd.IsLinear():
			curX = cmd.Param("X", curX)
			curY = cmd.Param("Y", curY)
			curZ = cmd.Param("Z", curZ)
		}
	}
	return ops
}
