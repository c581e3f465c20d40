package objscene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/rawmesh/internal/model"
	"github.com/Faultbox/rawmesh/pkg/formats"
	"github.com/Faultbox/rawmesh/pkg/math"
)

// ErrObjectNotFound reports a manifest reference to a missing OBJ group.
var ErrObjectNotFound = errors.New("object not found")

// BuildOptions controls how OBJ faces become merger input.
type BuildOptions struct {
	IncludeUVs  bool // Emit one UV channel when the faces carry texture coordinates
	Triangulate bool // Fan-triangulate polygons with more than three corners
}

// Geometry collects the faces of the named group, or of every group when
// name is empty. Base vertices are numbered in first-reference order. Corners
// without an explicit normal use the area-weighted average of the adjacent
// face normals.
func (f *File) Geometry(name string, opts BuildOptions) (*model.Geometry, error) {
	var faces []Face
	found := name == ""
	for _, g := range f.Groups {
		if name == "" || g.Name == name {
			found = true
			faces = append(faces, g.Faces...)
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, name)
	}

	geom := &model.Geometry{}
	base := make(map[int]int)
	hasUV := false
	for fi, face := range faces {
		for _, ref := range face.Corners {
			if ref.V >= len(f.Positions) {
				return nil, fmt.Errorf("%w: face %d references position %d of %d",
					formats.ErrInvariantViolation, fi, ref.V+1, len(f.Positions))
			}
			if ref.VT != none && ref.VT >= len(f.UVs) {
				return nil, fmt.Errorf("%w: face %d references texture coordinate %d of %d",
					formats.ErrInvariantViolation, fi, ref.VT+1, len(f.UVs))
			}
			if ref.VN != none && ref.VN >= len(f.Normals) {
				return nil, fmt.Errorf("%w: face %d references normal %d of %d",
					formats.ErrInvariantViolation, fi, ref.VN+1, len(f.Normals))
			}
			if _, ok := base[ref.V]; !ok {
				base[ref.V] = len(geom.Positions)
				geom.Positions = append(geom.Positions, f.Positions[ref.V])
			}
			hasUV = hasUV || ref.VT != none
		}
	}
	if opts.IncludeUVs && hasUV {
		geom.UVChannels = 1
	}

	geom.Normals = smoothNormals(f, faces, base, len(geom.Positions))

	for _, face := range faces {
		for _, tri := range polygons(face.Corners, opts.Triangulate) {
			out := model.Face{Corners: make([]model.Corner, len(tri))}
			for i, ref := range tri {
				b := base[ref.V]
				c := model.Corner{Vertex: b, Normal: geom.Normals[b]}
				if ref.VN != none {
					c.Normal = f.Normals[ref.VN]
				}
				if geom.UVChannels > 0 {
					var uv math.Vec2
					if ref.VT != none {
						uv = f.UVs[ref.VT]
					}
					c.UVs = []math.Vec2{uv}
				}
				out.Corners[i] = c
			}
			geom.Faces = append(geom.Faces, out)
		}
	}
	return geom, nil
}

// polygons fans a polygon into triangles (0, i, i+1), or returns it whole.
func polygons(corners []Ref, triangulate bool) [][]Ref {
	if len(corners) <= 3 || !triangulate {
		return [][]Ref{corners}
	}
	out := make([][]Ref, 0, len(corners)-2)
	for i := 1; i+1 < len(corners); i++ {
		out = append(out, []Ref{corners[0], corners[i], corners[i+1]})
	}
	return out
}

// smoothNormals sums unnormalized fan-triangle normals per base vertex.
func smoothNormals(f *File, faces []Face, base map[int]int, n int) []math.Vec3 {
	sum := make([]math.Vec3, n)
	for _, face := range faces {
		c := face.Corners
		p0 := f.Positions[c[0].V]
		for i := 1; i+1 < len(c); i++ {
			cross := f.Positions[c[i].V].Sub(p0).Cross(f.Positions[c[i+1].V].Sub(p0))
			for _, ref := range []Ref{c[0], c[i], c[i+1]} {
				b := base[ref.V]
				sum[b] = sum[b].Add(cross)
			}
		}
	}
	for i := range sum {
		sum[i] = sum[i].Normalize()
	}
	return sum
}
