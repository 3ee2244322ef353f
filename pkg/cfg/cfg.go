package cfg

// Epsilon is the displacement tolerance below which a move is considered
// zero-length and an arc is considered planar. The target controller cannot
// represent features smaller than this anyway.
var Epsilon = 0.001

// DefaultPrecision is the decimal precision for body coordinate fields.
// Header geometry fields always use 6 decimals regardless of this setting.
var DefaultPrecision = 3

var MinPrecision = 1
var MaxPrecision = 6

// MinClearanceHeight is the minimum safe retract height in mm. Smaller values
// are raised with a warning unless the no-clamp flag is set.
var MinClearanceHeight = 20.0

// Default workpiece dimensions (mm), used when neither the flag string nor
// the job's stock or model bounds provide them.
var DefaultWorkpieceLength = 800.0
var DefaultWorkpieceWidth = 600.0
var DefaultWorkpieceThickness = 20.0

// ArcSegmentDegrees controls discretization of helical arcs (arcs with a Z
// change, which the output format cannot represent) into line segments.
var ArcSegmentDegrees = 5.0
var MinArcSegments = 8

// CompensationBandRatio is the fraction of the workpiece length used as the
// dead band around the stock edges when classifying a contour as left/right
// of the workpiece.
var CompensationBandRatio = 0.1
