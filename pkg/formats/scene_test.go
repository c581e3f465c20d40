package formats

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rawmesh/pkg/math"
)

func placed(name string, mat *SceneMaterial) SceneObject {
	return SceneObject{
		Name:     name,
		Position: math.Vec3{X: 1, Y: 2.5, Z: -3},
		Rotation: math.QuatIdentity(),
		Material: mat,
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Box", "Box"},
		{"Box.001", "Box"},
		{"Box.12", "Box"},
		{"Box.v2", "Box.v2"},
		{"Box.", "Box."},
		{"Crate.001.002", "Crate.001"},
		{".001", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseName(tt.name))
		})
	}
}

func TestWriteScene_Format(t *testing.T) {
	mat := &SceneMaterial{
		Shader: "phong.shader",
		Textures: []TextureSlot{
			{Slot: 1, Path: "box_n.png"},
			{Slot: 0, Path: "box.png"},
			{Slot: 2, Path: ""},
		},
	}

	var out bytes.Buffer
	report, err := WriteScene(&out, []SceneObject{placed("Box", mat)}, nil)
	require.NoError(t, err)

	want := `<scene>
<object name="Box" shader="phong.shader" mesh="Box.mesh" texture0="box.png" texture1="box_n.png">
  <position x="1.000000" y="2.500000" z="-3.000000" />
  <rotation x="0.000000" y="0.000000" z="0.000000" w="1.000000" />
</object>
</scene>
`
	assert.Equal(t, want, out.String())
	assert.Equal(t, []string{"Box"}, report.Objects)
	assert.Equal(t, []string{"Box.mesh"}, report.Meshes)
}

func TestWriteScene_SparseTextureSlots(t *testing.T) {
	mat := &SceneMaterial{Textures: []TextureSlot{{Slot: 0, Path: "a.png"}, {Slot: 2, Path: "c.png"}}}

	var out bytes.Buffer
	_, err := WriteScene(&out, []SceneObject{placed("Crate", mat)}, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `mesh="Crate.mesh" texture0="a.png" texture2="c.png">`)
	assert.NotContains(t, out.String(), "texture1")

	scene, err := ParseScene(out.Bytes())
	require.NoError(t, err)
	require.Len(t, scene.Objects, 1)
	assert.Equal(t, mat.Textures, scene.Objects[0].Textures)
}

func TestWriteScene_DefaultShader(t *testing.T) {
	objs := []SceneObject{placed("Lamp", &SceneMaterial{})}

	var out bytes.Buffer
	_, err := WriteScene(&out, objs, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `<object name="Lamp" shader="color.shader" mesh="Lamp.mesh">`)

	out.Reset()
	sw := SceneWriter{DefaultShader: "flat.shader"}
	_, err = sw.Write(&out, objs, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `shader="flat.shader"`)
}

func TestWriteScene_MeshDedup(t *testing.T) {
	mat := &SceneMaterial{}
	objs := []SceneObject{placed("Box", mat), placed("Box.001", mat), placed("Box.002", mat), placed("Cone", mat)}

	calls := map[string]int{}
	var firstSource []string
	writer := func(meshName string, obj SceneObject) error {
		calls[meshName]++
		firstSource = append(firstSource, obj.Name)
		return nil
	}

	var out bytes.Buffer
	report, err := WriteScene(&out, objs, writer)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Box.mesh": 1, "Cone.mesh": 1}, calls)
	assert.Equal(t, []string{"Box", "Cone"}, firstSource)
	assert.Equal(t, []string{"Box.mesh", "Cone.mesh"}, report.Meshes)
	assert.Equal(t, 3, strings.Count(out.String(), `mesh="Box.mesh"`))
}

func TestWriteScene_SkipsMissingMaterial(t *testing.T) {
	objs := []SceneObject{
		placed("First", &SceneMaterial{}),
		placed("Second", nil),
		placed("Third", &SceneMaterial{}),
	}

	var meshes []string
	var out bytes.Buffer
	report, err := WriteScene(&out, objs, func(meshName string, _ SceneObject) error {
		meshes = append(meshes, meshName)
		return nil
	})
	require.NoError(t, err)

	doc := out.String()
	assert.Equal(t, 2, strings.Count(doc, "<object "))
	assert.Less(t, strings.Index(doc, `name="First"`), strings.Index(doc, `name="Third"`))
	assert.NotContains(t, doc, "Second")
	assert.Equal(t, []string{"First.mesh", "Third.mesh"}, meshes)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "Second", report.Skipped[0].Name)
	assert.ErrorIs(t, report.Skipped[0].Err, ErrMissingMaterial)
}

func TestWriteScene_MeshWriterErrors(t *testing.T) {
	mat := &SceneMaterial{}

	t.Run("missing material skips", func(t *testing.T) {
		objs := []SceneObject{placed("A", mat), placed("B", mat)}
		var out bytes.Buffer
		report, err := WriteScene(&out, objs, func(meshName string, _ SceneObject) error {
			if meshName == "A.mesh" {
				return fmt.Errorf("%w: no shader slot", ErrMissingMaterial)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, report.Objects)
		assert.Equal(t, []string{"B.mesh"}, report.Meshes)
		assert.NotContains(t, out.String(), `name="A"`)
	})

	t.Run("fatal aborts", func(t *testing.T) {
		objs := []SceneObject{placed("A", mat), placed("B", mat)}
		_, err := WriteScene(&bytes.Buffer{}, objs, func(string, SceneObject) error {
			return fmt.Errorf("%w: quad face", ErrUnsupportedTopology)
		})
		assert.ErrorIs(t, err, ErrUnsupportedTopology)
	})
}

func TestWriteScene_SinkError(t *testing.T) {
	_, err := WriteScene(&failingWriter{}, []SceneObject{placed("A", &SceneMaterial{})}, nil)
	assert.ErrorIs(t, err, ErrIO)
}

func TestWriteScene_Empty(t *testing.T) {
	var out bytes.Buffer
	_, err := WriteScene(&out, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "<scene>\n</scene>\n", out.String())
}

func TestParseScene_RoundTrip(t *testing.T) {
	objs := []SceneObject{
		{
			Name:     "Wheel.003",
			Position: math.Vec3{X: -1.25, Y: 0, Z: 4},
			Rotation: math.Quat{X: 0, Y: 0.707107, Z: 0, W: 0.707107},
			Material: &SceneMaterial{Shader: "tire.shader", Textures: []TextureSlot{{Slot: 0, Path: "tire.png"}}},
		},
		placed("Truck", &SceneMaterial{}),
	}

	var out bytes.Buffer
	_, err := WriteScene(&out, objs, nil)
	require.NoError(t, err)

	scene, err := ParseScene(out.Bytes())
	require.NoError(t, err)
	assert.Empty(t, scene.Warnings)
	require.Len(t, scene.Objects, 2)

	wheel := scene.Objects[0]
	assert.Equal(t, "Wheel.003", wheel.Name)
	assert.Equal(t, "tire.shader", wheel.Shader)
	assert.Equal(t, "Wheel.mesh", wheel.Mesh)
	assert.Equal(t, []TextureSlot{{Slot: 0, Path: "tire.png"}}, wheel.Textures)
	assert.Equal(t, objs[0].Position, wheel.Position)
	assert.InDelta(t, 0.707107, wheel.Rotation.Y, 1e-6)

	assert.Equal(t, "color.shader", scene.Objects[1].Shader)
}

func TestParseScene_SkipsIncomplete(t *testing.T) {
	doc := `<scene>
<object name="NoRot" mesh="a.mesh">
  <position x="0" y="0" z="0" />
</object>
<object name="BadPos" mesh="b.mesh">
  <position x="0" y="zero" z="0" />
  <rotation x="0" y="0" z="0" w="1" />
</object>
<object name="MissingW" mesh="c.mesh">
  <position x="0" y="0" z="0" />
  <rotation x="0" y="0" z="0" />
</object>
<object name="Good" mesh="d.mesh" texture3="d.png">
  <position x="1" y="2" z="3" />
  <rotation x="0" y="0" z="0" w="1" />
</object>
</scene>`

	scene, err := ParseScene([]byte(doc))
	require.NoError(t, err)
	require.Len(t, scene.Objects, 1)
	assert.Equal(t, "Good", scene.Objects[0].Name)
	assert.Equal(t, []TextureSlot{{Slot: 3, Path: "d.png"}}, scene.Objects[0].Textures)
	assert.Len(t, scene.Warnings, 3)
}

func TestParseScene_Malformed(t *testing.T) {
	_, err := ParseScene([]byte(`<scene><object name="x"></scene>`))
	assert.Error(t, err)
}

func TestSceneWriter_WriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.scene")

	var sw SceneWriter
	_, err := sw.WriteFile(path, []SceneObject{placed("Box", &SceneMaterial{})}, nil)
	require.NoError(t, err)

	scene, err := ParseSceneFile(path)
	require.NoError(t, err)
	assert.Len(t, scene.Objects, 1)

	// A failing export leaves the previous document in place.
	_, err = sw.WriteFile(path, []SceneObject{placed("Crate", &SceneMaterial{})}, func(string, SceneObject) error {
		return errors.New("boom")
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `name="Box"`)
}
