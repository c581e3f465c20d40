// Package model reconciles per-corner mesh attributes into the indexed
// vertex buffers of the mesh container format.
package model

import (
	"github.com/Faultbox/rawmesh/pkg/math"
)

// Corner is one triangle corner: a reference to a base vertex plus the
// attributes the host assigned to this particular corner.
type Corner struct {
	Vertex int         // Base vertex id (index into Geometry.Positions)
	Normal math.Vec3   // Corner normal (usually the smoothed vertex normal)
	UVs    []math.Vec2 // One entry per UV channel
}

// Face is a polygon. Only triangles are accepted by Merge.
type Face struct {
	Corners []Corner
}

// Geometry is an object's mesh as resolved by the host.
type Geometry struct {
	Positions  []math.Vec3 // Base vertex positions
	Normals    []math.Vec3 // Base vertex normals; optional, parallel to Positions
	Faces      []Face
	UVChannels int
}

// TriangleCount returns the number of faces.
func (g *Geometry) TriangleCount() int {
	return len(g.Faces)
}

// Policy selects how corners are mapped to output vertices.
type Policy int

const (
	// PolicyDedup shares one output vertex per base vertex and forks a copy
	// whenever a corner's attributes diverge from the first assignment.
	PolicyDedup Policy = iota
	// PolicyFlat emits three fresh vertices per triangle.
	PolicyFlat
)

// String returns the policy name used in configuration files.
func (p Policy) String() string {
	switch p {
	case PolicyDedup:
		return "dedup"
	case PolicyFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// ParsePolicy is the inverse of Policy.String.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "dedup", "":
		return PolicyDedup, true
	case "flat":
		return PolicyFlat, true
	default:
		return 0, false
	}
}

// MergeOptions contains options for Merge.
type MergeOptions struct {
	// Policy selects dedup or flat expansion.
	Policy Policy
	// FlatNormals replaces corner normals with the face normal.
	FlatNormals bool
}
