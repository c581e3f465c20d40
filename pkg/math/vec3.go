package math

import (
	"math"

	"github.com/chewxy/math32"
)

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns a unit vector, or the zero vector if v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// BitsEqual reports whether all components have identical IEEE-754 bits.
func (v Vec3) BitsEqual(other Vec3) bool {
	return math.Float32bits(v.X) == math.Float32bits(other.X) &&
		math.Float32bits(v.Y) == math.Float32bits(other.Y) &&
		math.Float32bits(v.Z) == math.Float32bits(other.Z)
}

// FaceNormal returns the unit normal of the counter-clockwise triangle a, b, c.
// ok is false for degenerate triangles.
func FaceNormal(a, b, c Vec3) (n Vec3, ok bool) {
	cross := b.Sub(a).Cross(c.Sub(a))
	if cross.Length() < 1e-12 {
		return Vec3{}, false
	}
	return cross.Normalize(), true
}
