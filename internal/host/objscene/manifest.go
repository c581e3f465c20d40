// Package objscene is a host built from a YAML manifest of objects placed
// from Wavefront OBJ files.
//
//	encoding: euc-kr
//	objects:
//	  - name: Box.001
//	    source: box.obj
//	    object: Cube
//	    position: [0, 0, 0]
//	    rotation: [0, 0, 0, 1]
//	    material:
//	      shader: phong.shader
//	      textures: [box.png, "", box_n.png]
package objscene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/rawmesh/pkg/encoding"
	"github.com/Faultbox/rawmesh/pkg/math"
)

// Manifest lists the placed objects of a scene.
type Manifest struct {
	Encoding string       `yaml:"encoding"` // Text encoding of the OBJ sources; empty is UTF-8
	Objects  []ObjectSpec `yaml:"objects"`
}

// ObjectSpec is one manifest entry.
type ObjectSpec struct {
	Name     string        `yaml:"name"`
	Source   string        `yaml:"source"` // OBJ file; empty for non-mesh objects
	Object   string        `yaml:"object"` // OBJ group; empty takes the whole file
	Position [3]float32    `yaml:"position"`
	Rotation *[4]float32   `yaml:"rotation"` // Quaternion x, y, z, w
	Euler    *[3]float32   `yaml:"euler"`    // XYZ degrees, used when rotation is absent
	Flat     bool          `yaml:"flat"`
	Hidden   bool          `yaml:"hidden"`
	Material *MaterialSpec `yaml:"material"`
}

// MaterialSpec is a resolved material.
type MaterialSpec struct {
	Shader   string   `yaml:"shader"`
	Textures []string `yaml:"textures"`
}

// Transform returns the entry's placement. Rotations are normalized.
func (o *ObjectSpec) Transform() (math.Vec3, math.Quat) {
	pos := math.Vec3{X: o.Position[0], Y: o.Position[1], Z: o.Position[2]}
	switch {
	case o.Rotation != nil:
		r := o.Rotation
		return pos, math.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]}.Normalize()
	case o.Euler != nil:
		return pos, math.QuatFromEuler(o.Euler[0], o.Euler[1], o.Euler[2])
	default:
		return pos, math.QuatIdentity()
	}
}

// ParseManifest decodes a manifest and checks that every entry is named.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if !encoding.IsUTF8(m.Encoding) {
		if _, err := encoding.Lookup(m.Encoding); err != nil {
			return nil, err
		}
	}
	for i := range m.Objects {
		o := &m.Objects[i]
		if o.Name == "" {
			return nil, fmt.Errorf("manifest object %d has no name", i)
		}
		if o.Rotation != nil && o.Euler != nil {
			return nil, fmt.Errorf("manifest object %q sets both rotation and euler", o.Name)
		}
	}
	return &m, nil
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}
