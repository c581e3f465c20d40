package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rawmesh/internal/model"
	"github.com/Faultbox/rawmesh/pkg/formats"
	"github.com/Faultbox/rawmesh/pkg/math"
)

func TestMaterial_SceneMaterial(t *testing.T) {
	m := &Material{ShaderOverride: "phong.shader", TextureSlots: []string{"a.png", "", "c.png"}}
	sm := m.SceneMaterial()
	require.NotNil(t, sm)
	assert.Equal(t, "phong.shader", sm.Shader)
	assert.Equal(t, []formats.TextureSlot{{Slot: 0, Path: "a.png"}, {Slot: 2, Path: "c.png"}}, sm.Textures)

	var none *Material
	assert.Nil(t, none.SceneMaterial())
}

func TestStaticObject(t *testing.T) {
	g := &model.Geometry{}
	o := &StaticObject{
		ObjectName: "Box.001",
		Geometry:   g,
		Position:   math.Vec3{X: 1},
		Rotation:   math.QuatIdentity(),
		Flat:       true,
	}

	var obj Object = o
	assert.Equal(t, "Box.001", obj.Name())
	got, err := obj.Triangles()
	require.NoError(t, err)
	assert.Same(t, g, got)
	pos, rot := obj.Transform()
	assert.Equal(t, math.Vec3{X: 1}, pos)
	assert.Equal(t, math.QuatIdentity(), rot)
	assert.True(t, obj.FlatShading())

	_, ok := obj.Material()
	assert.False(t, ok)

	o.Mat = &Material{}
	_, ok = obj.Material()
	assert.True(t, ok)

	o.GeomErr = errors.New("evaluation failed")
	_, err = obj.Triangles()
	assert.Error(t, err)
}

func TestStaticScene(t *testing.T) {
	s := &StaticScene{Objects: []Object{&StaticObject{ObjectName: "A"}, &StaticObject{ObjectName: "B"}}}
	objs, err := s.VisibleMeshObjects()
	require.NoError(t, err)
	assert.Len(t, objs, 2)
}
