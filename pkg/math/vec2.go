// Package math provides the float32 vector and quaternion types shared by
// the mesh and scene formats.
package math

import "math"

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// BitsEqual reports whether both components have identical IEEE-754 bits.
// Unlike ==, it treats -0 and +0 as different and a NaN as equal to itself.
func (v Vec2) BitsEqual(other Vec2) bool {
	return math.Float32bits(v.X) == math.Float32bits(other.X) &&
		math.Float32bits(v.Y) == math.Float32bits(other.Y)
}
