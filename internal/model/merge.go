package model

import (
	"fmt"
	gomath "math"
	"slices"

	"github.com/Faultbox/rawmesh/pkg/formats"
	"github.com/Faultbox/rawmesh/pkg/math"
)

// maxElements is the largest vertex or index count a mesh file can carry.
// Neither policy emits more vertices than indices, so bounding the index
// count bounds both.
var maxElements uint64 = gomath.MaxUint32

// Merge builds indexed vertex buffers from the host geometry.
// Faces are visited in order and corners in order 0, 1, 2; dedup output
// depends on that order, so the same input always yields the same buffers.
func Merge(g *Geometry, opts MergeOptions) (*formats.MeshBuffers, error) {
	if err := validate(g); err != nil {
		return nil, err
	}

	switch opts.Policy {
	case PolicyDedup:
		return mergeDedup(g, opts)
	case PolicyFlat:
		return expandFlat(g, opts)
	default:
		return nil, fmt.Errorf("%w: unknown merge policy %d", formats.ErrInvariantViolation, opts.Policy)
	}
}

// validate checks topology and attribute shape before any output is built.
func validate(g *Geometry) error {
	if g == nil {
		return fmt.Errorf("%w: nil geometry", formats.ErrInvariantViolation)
	}
	if g.UVChannels < 0 {
		return fmt.Errorf("%w: %d uv channels", formats.ErrInvariantViolation, g.UVChannels)
	}
	if len(g.Normals) != 0 && len(g.Normals) != len(g.Positions) {
		return fmt.Errorf("%w: %d normals for %d base vertices",
			formats.ErrInvariantViolation, len(g.Normals), len(g.Positions))
	}
	if 3*uint64(len(g.Faces)) > maxElements {
		return fmt.Errorf("%w: %d faces", formats.ErrOverflow, len(g.Faces))
	}

	for fi := range g.Faces {
		face := &g.Faces[fi]
		if len(face.Corners) != 3 {
			return fmt.Errorf("%w: face %d has %d corners", formats.ErrUnsupportedTopology, fi, len(face.Corners))
		}
		for ci := range face.Corners {
			c := &face.Corners[ci]
			if c.Vertex < 0 || c.Vertex >= len(g.Positions) {
				return fmt.Errorf("%w: face %d corner %d references vertex %d of %d",
					formats.ErrInvariantViolation, fi, ci, c.Vertex, len(g.Positions))
			}
			if len(c.UVs) != g.UVChannels {
				return fmt.Errorf("%w: face %d corner %d has %d uv channels, mesh has %d",
					formats.ErrInvariantViolation, fi, ci, len(c.UVs), g.UVChannels)
			}
		}
	}
	return nil
}

// mergeDedup gives each base vertex an output slot the first time a corner
// references it, so vertices come out in first-seen order and unreferenced
// base vertices are dropped. The first corner to reach a slot assigns its
// attributes; later corners with identical attributes reuse it and any
// divergent corner appends a fork. Forks are never matched again, so a
// repeated divergent variant forks again.
func mergeDedup(g *Geometry, opts MergeOptions) (*formats.MeshBuffers, error) {
	out := &formats.MeshBuffers{
		Vertices: make([]formats.MeshVertex, 0, len(g.Positions)),
		Indices:  make([]uint32, 0, 3*len(g.Faces)),
	}
	slots := make([]int, len(g.Positions))
	for i := range slots {
		slots[i] = -1
	}

	for fi := range g.Faces {
		face := &g.Faces[fi]
		normals := cornerNormals(g, face, opts)

		for ci := range face.Corners {
			c := &face.Corners[ci]
			b := c.Vertex
			slot := slots[b]

			if slot >= 0 && out.Vertices[slot].SameAttributes(normals[ci], c.UVs) {
				out.Indices = append(out.Indices, uint32(slot))
				continue
			}
			out.Vertices = append(out.Vertices, formats.MeshVertex{
				Position: g.Positions[b],
				Normal:   normals[ci],
				UVs:      slices.Clone(c.UVs),
			})
			if slot < 0 {
				slots[b] = len(out.Vertices) - 1
			}
			out.Indices = append(out.Indices, uint32(len(out.Vertices)-1))
		}
	}

	return out, nil
}

// expandFlat emits three vertices per triangle with sequential indices.
func expandFlat(g *Geometry, opts MergeOptions) (*formats.MeshBuffers, error) {
	n := 3 * len(g.Faces)
	out := &formats.MeshBuffers{
		Vertices: make([]formats.MeshVertex, 0, n),
		Indices:  make([]uint32, 0, n),
	}

	for fi := range g.Faces {
		face := &g.Faces[fi]
		normals := cornerNormals(g, face, opts)

		for ci := range face.Corners {
			c := &face.Corners[ci]
			out.Indices = append(out.Indices, uint32(len(out.Vertices)))
			out.Vertices = append(out.Vertices, formats.MeshVertex{
				Position: g.Positions[c.Vertex],
				Normal:   normals[ci],
				UVs:      slices.Clone(c.UVs),
			})
		}
	}

	return out, nil
}

// cornerNormals returns the normal each corner of face contributes. With
// FlatNormals set, all three become the face normal unless the triangle is
// degenerate.
func cornerNormals(g *Geometry, face *Face, opts MergeOptions) [3]math.Vec3 {
	c := face.Corners
	normals := [3]math.Vec3{c[0].Normal, c[1].Normal, c[2].Normal}
	if !opts.FlatNormals {
		return normals
	}

	n, ok := math.FaceNormal(g.Positions[c[0].Vertex], g.Positions[c[1].Vertex], g.Positions[c[2].Vertex])
	if !ok {
		return normals
	}
	return [3]math.Vec3{n, n, n}
}
