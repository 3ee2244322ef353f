package compile

import (
	"woodpost/pkg/cfg"
	"woodpost/pkg/geometry"
)

// PartMinimum returns the minimum X/Y/Z over every compiled point: contour
// start positions, element endpoints, arc centers (derived from the previous
// point plus the stored I/J offsets), the conservative center−radius arc
// extent, and drill positions at their negative depth. An empty output yields
// the origin.
func PartMinimum(o *Output) geometry.Point3 {
	b, ok := fold(o)
	if !ok {
		return geometry.Point3{}
	}
	return b.Min
}

// PartBounds returns the full bounding extrema over the compiled output, or
// zero bounds when no points exist.
func PartBounds(o *Output) geometry.Bounds3 {
	b, ok := fold(o)
	if !ok {
		return geometry.Bounds3{}
	}
	return b
}

type folder struct {
	bounds geometry.Bounds3
	any    bool
}

func (f *folder) point(x, y, z float64) {
	if !f.any {
		f.bounds = geometry.Bounds3{
			Min: geometry.Point3{X: x, Y: y, Z: z},
			Max: geometry.Point3{X: x, Y: y, Z: z},
		}
		f.any = true
		return
	}
	f.bounds.Min.X = min(f.bounds.Min.X, x)
	f.bounds.Min.Y = min(f.bounds.Min.Y, y)
	f.bounds.Min.Z = min(f.bounds.Min.Z, z)
	f.bounds.Max.X = max(f.bounds.Max.X, x)
	f.bounds.Max.Y = max(f.bounds.Max.Y, y)
	f.bounds.Max.Z = max(f.bounds.Max.Z, z)
}

func fold(o *Output) (geometry.Bounds3, bool) {
	var f folder

	for _, contour := range o.Contours {
		// A symbolic start Z is relative to the controller's own origin and
		// stays out of the Z fold.
		startZ := contour.StartZ.Num
		if contour.StartZ.IsSymbolic() {
			startZ = 0
		}
		f.point(contour.StartX, contour.StartY, startZ)

		prevX, prevY := contour.StartX, contour.StartY
		prevZ := startZ
		for _, elem := range contour.Elements {
			f.point(elem.X, elem.Y, elem.Z)

			if elem.Kind == KindArc {
				// The center offsets are relative to the previous emitted
				// point, not the element's own endpoint.
				centerX := prevX + elem.I
				centerY := prevY + elem.J
				f.point(centerX, centerY, prevZ)

				// Bound the sweep conservatively by center ± radius in the
				// plane; the true sweep-limited extent is never larger.
				if elem.R > cfg.Epsilon {
					f.point(centerX-elem.R, centerY-elem.R, prevZ)
					f.point(centerX+elem.R, centerY+elem.R, prevZ)
				}
			}

			prevX, prevY, prevZ = elem.X, elem.Y, elem.Z
		}
	}

	for _, op := range o.Operations {
		if op.Type == OpDrill {
			f.point(op.X, op.Y, -op.Depth)
		}
	}

	return f.bounds, f.any
}
