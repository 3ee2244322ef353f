package geometry

import (
	"math"
)

type Point struct {
	X float64
	Y float64
}

type Vector2 = Point

// Point3 is a position in machine coordinates.
type Point3 struct {
	X float64
	Y float64
	Z float64
}

// Bounds3 is an axis-aligned bounding box in machine coordinates.
type Bounds3 struct {
	Min Point3
	Max Point3
}

func (a Vector2) Minus(b Vector2) Vector2 {
	return Vector2{
		X: a.X - b.X,
		Y: a.Y - b.Y,
	}
}

func (a Vector2) Add(b Vector2) Vector2 {
	return Vector2{
		X: a.X + b.X,
		Y: a.Y + b.Y,
	}
}

func (v Vector2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// Distance returns the distance between two points.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

func (p Point3) Add(other Point3) Point3 {
	return Point3{X: p.X + other.X, Y: p.Y + other.Y, Z: p.Z + other.Z}
}

func (p Point3) Negate() Point3 {
	return Point3{X: -p.X, Y: -p.Y, Z: -p.Z}
}

// Angle returns the angle of the ray from center to p, via atan2.
func Angle(center, p Point) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X)
}

// NormalizeArcEnd adjusts the end angle so that sweeping from start to end
// moves in the requested direction: counterclockwise sweeps forward
// (end >= start), clockwise sweeps backward (end <= start).
func NormalizeArcEnd(start, end float64, clockwise bool) float64 {
	if !clockwise && end < start {
		end += 2 * math.Pi
	} else if clockwise && end > start {
		end -= 2 * math.Pi
	}
	return end
}
