// Package host defines what the exporter needs from the application that
// owns the scene graph.
package host

import (
	"github.com/Faultbox/rawmesh/internal/model"
	"github.com/Faultbox/rawmesh/pkg/formats"
	"github.com/Faultbox/rawmesh/pkg/math"
)

// Scene lists the objects to export.
type Scene interface {
	// VisibleMeshObjects returns the visible mesh objects in scene order.
	VisibleMeshObjects() ([]Object, error)
}

// Object is one placed mesh object.
type Object interface {
	Name() string
	// Triangles returns the object's evaluated geometry.
	Triangles() (*model.Geometry, error)
	// Transform returns the world position and rotation.
	Transform() (math.Vec3, math.Quat)
	// Material returns the resolved material, or false when the object has
	// none.
	Material() (*Material, bool)
	FlatShading() bool
}

// Material is an object's resolved shader and texture assignment.
type Material struct {
	ShaderOverride string   // Empty uses the exporter's default shader
	TextureSlots   []string // Texture path per slot; empty entries are unused slots
}

// SceneMaterial converts m to its scene document form.
func (m *Material) SceneMaterial() *formats.SceneMaterial {
	if m == nil {
		return nil
	}
	sm := &formats.SceneMaterial{Shader: m.ShaderOverride}
	for i, path := range m.TextureSlots {
		if path != "" {
			sm.Textures = append(sm.Textures, formats.TextureSlot{Slot: i, Path: path})
		}
	}
	return sm
}

// StaticScene is a Scene over a fixed object list.
type StaticScene struct {
	Objects []Object
}

// VisibleMeshObjects returns s.Objects.
func (s *StaticScene) VisibleMeshObjects() ([]Object, error) {
	return s.Objects, nil
}

// StaticObject is an Object with precomputed geometry.
type StaticObject struct {
	ObjectName string
	Geometry   *model.Geometry
	GeomErr    error // Returned by Triangles instead of Geometry when set
	Position   math.Vec3
	Rotation   math.Quat
	Mat        *Material
	Flat       bool
}

func (o *StaticObject) Name() string { return o.ObjectName }

func (o *StaticObject) Triangles() (*model.Geometry, error) {
	if o.GeomErr != nil {
		return nil, o.GeomErr
	}
	return o.Geometry, nil
}

func (o *StaticObject) Transform() (math.Vec3, math.Quat) { return o.Position, o.Rotation }

func (o *StaticObject) Material() (*Material, bool) { return o.Mat, o.Mat != nil }

func (o *StaticObject) FlatShading() bool { return o.Flat }
