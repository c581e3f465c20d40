package objscene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rawmesh/internal/model"
	"github.com/Faultbox/rawmesh/pkg/formats"
	"github.com/Faultbox/rawmesh/pkg/math"
)

const cubeFace = `# two groups sharing positions
mtllib box.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
o Quad
usemtl Box
s off
f 1/1/1 2/2/1 3/3/1 4/4/1
g Tri
f -4//1 -3//1 -2//1
l 1 2
`

func parse(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	return f
}

func TestParse(t *testing.T) {
	f := parse(t, cubeFace)

	assert.Len(t, f.Positions, 4)
	assert.Len(t, f.UVs, 4)
	assert.Len(t, f.Normals, 1)
	require.Len(t, f.Groups, 2)

	quad := f.Groups[0]
	assert.Equal(t, "Quad", quad.Name)
	require.Len(t, quad.Faces, 1)
	assert.Equal(t, []Ref{{0, 0, 0}, {1, 1, 0}, {2, 2, 0}, {3, 3, 0}}, quad.Faces[0].Corners)

	tri := f.Groups[1]
	assert.Equal(t, "Tri", tri.Name)
	assert.Equal(t, []Ref{{0, none, 0}, {1, none, 0}, {2, none, 0}}, tri.Faces[0].Corners)

	require.Len(t, f.Warnings, 1)
	assert.Contains(t, f.Warnings[0], `"l"`)
}

func TestParse_IndexForms(t *testing.T) {
	f := parse(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0.5 0.5\nf 1 2/1 3/1/\n")
	require.Len(t, f.Groups, 1)
	assert.Equal(t, "", f.Groups[0].Name)
	assert.Equal(t, []Ref{{0, none, none}, {1, 0, none}, {2, 0, none}}, f.Groups[0].Faces[0].Corners)
}

func TestParse_NoTrailingNewline(t *testing.T) {
	f := parse(t, "v 0 0 0\r\nv 1 0 0\r\nv 0 1 0\r\nf 1 2 3")
	require.Len(t, f.Groups, 1)
	assert.Len(t, f.Groups[0].Faces, 1)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"short vertex", "v 0 0\n"},
		{"bad float", "v 0 zero 0\n"},
		{"short uv", "vt 1\n"},
		{"zero index", "v 0 0 0\nf 0 1 1\n"},
		{"relative before start", "v 0 0 0\nf -2 1 1\n"},
		{"bad index", "v 0 0 0\nf a 1 1\n"},
		{"two corners", "v 0 0 0\nf 1 1\n"},
		{"too many parts", "v 0 0 0\nf 1/1/1/1 1 1\n"},
		{"nameless group", "o\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			assert.ErrorIs(t, err, ErrMalformedOBJ)
		})
	}
}

func TestGeometry_WholeFile(t *testing.T) {
	f := parse(t, cubeFace)

	g, err := f.Geometry("", BuildOptions{IncludeUVs: true, Triangulate: true})
	require.NoError(t, err)
	assert.Len(t, g.Positions, 4)
	assert.Equal(t, 1, g.UVChannels)
	// Quad fans into two triangles, plus the explicit triangle.
	require.Len(t, g.Faces, 3)
	for _, face := range g.Faces {
		assert.Len(t, face.Corners, 3)
	}

	// Corner without vt gets a zero UV once the mesh has a channel.
	assert.Equal(t, []math.Vec2{{}}, g.Faces[2].Corners[0].UVs)
	assert.Equal(t, []math.Vec2{{X: 1, Y: 1}}, g.Faces[0].Corners[2].UVs)

	_, err = model.Merge(g, model.MergeOptions{})
	assert.NoError(t, err)
}

func TestGeometry_SelectGroup(t *testing.T) {
	f := parse(t, cubeFace)

	g, err := f.Geometry("Tri", BuildOptions{IncludeUVs: true, Triangulate: true})
	require.NoError(t, err)
	assert.Len(t, g.Positions, 3)
	assert.Zero(t, g.UVChannels, "group has no texture coordinates")
	assert.Len(t, g.Faces, 1)

	_, err = f.Geometry("Sphere", BuildOptions{})
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestGeometry_FirstReferenceOrder(t *testing.T) {
	f := parse(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 9 9 9\nf 3 1 2\n")

	g, err := f.Geometry("", BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, []math.Vec3{{Y: 1}, {}, {X: 1}}, g.Positions, "unreferenced positions are dropped")
	c := g.Faces[0].Corners
	assert.Equal(t, []int{0, 1, 2}, []int{c[0].Vertex, c[1].Vertex, c[2].Vertex})
}

func TestGeometry_SmoothNormals(t *testing.T) {
	// Two triangles folded along the shared edge 1-2.
	f := parse(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 1\nf 1 2 3\nf 2 4 3\n")

	g, err := f.Geometry("", BuildOptions{})
	require.NoError(t, err)
	require.Len(t, g.Normals, 4)

	assert.Equal(t, math.Vec3{Z: 1}, g.Normals[0])
	for _, n := range g.Normals {
		assert.InDelta(t, 1, n.Length(), 1e-5)
	}
	shared := g.Normals[1]
	assert.Greater(t, shared.Z, float32(0))
	assert.Less(t, shared.Z, float32(1))
	assert.Equal(t, g.Normals[1], g.Faces[0].Corners[1].Normal)
}

func TestGeometry_ExplicitNormals(t *testing.T) {
	f := parse(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 1 0 0\nf 1//1 2//1 3\n")

	g, err := f.Geometry("", BuildOptions{})
	require.NoError(t, err)
	c := g.Faces[0].Corners
	assert.Equal(t, math.Vec3{X: 1}, c[0].Normal)
	assert.Equal(t, math.Vec3{Z: 1}, c[2].Normal)
}

func TestGeometry_Options(t *testing.T) {
	f := parse(t, cubeFace)

	g, err := f.Geometry("Quad", BuildOptions{})
	require.NoError(t, err)
	assert.Zero(t, g.UVChannels)
	require.Len(t, g.Faces, 1)
	assert.Len(t, g.Faces[0].Corners, 4)

	_, err = model.Merge(g, model.MergeOptions{})
	assert.ErrorIs(t, err, formats.ErrUnsupportedTopology)
}

func TestGeometry_IndexOutOfRange(t *testing.T) {
	for _, src := range []string{
		"v 0 0 0\nf 1 2 3\n",
		"v 0 0 0\nf 1/4 1 1\n",
		"v 0 0 0\nf 1//2 1 1\n",
	} {
		_, err := parse(t, src).Geometry("", BuildOptions{IncludeUVs: true})
		assert.ErrorIs(t, err, formats.ErrInvariantViolation, src)
	}
}
