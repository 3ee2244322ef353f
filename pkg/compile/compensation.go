package compile

import (
	"woodpost/pkg/cfg"
)

// Tool compensation codes (the RK field): which side of the workpiece the
// controller references the tool against.
const (
	CompNone  = "NoWRK"
	CompLeft  = "WRKL"
	CompRight = "WRKR"
)

// Compensation classifies a contour's horizontal position relative to the
// stock. The mean element X is compared against the workpiece left and right
// boundaries with a dead band of 10% of the workpiece length; a contour well
// past the left edge references left, well past the right edge references
// right, anything else gets no reference.
func Compensation(o *Output, contourID int, wp Workpiece) string {
	contour := o.Contour(contourID)
	if contour == nil || len(contour.Elements) == 0 {
		return CompNone
	}

	sum := 0.0
	for _, elem := range contour.Elements {
		sum += elem.X
	}
	avgX := sum / float64(len(contour.Elements))

	left := wp.OffsetX + wp.ExtentXNeg
	right := left + wp.Length
	band := wp.Length * cfg.CompensationBandRatio

	switch {
	case avgX < left-band:
		return CompLeft
	case avgX > right+band:
		return CompRight
	default:
		return CompNone
	}
}
