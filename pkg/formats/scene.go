// Scene document codec.
//
// A scene is a tag-per-line document:
//
//	<scene>
//	<object name="Box" shader="color.shader" mesh="Box.mesh" texture0="box.png">
//	  <position x="0.000000" y="0.000000" z="0.000000" />
//	  <rotation x="0.000000" y="0.000000" z="0.000000" w="1.000000" />
//	</object>
//	</scene>
//
// Attribute values are written verbatim, without entity escaping. A name or
// path containing '"', '<' or '&' produces a document the renderer cannot
// load; this is a known limitation of the format.

package formats

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/Faultbox/rawmesh/pkg/math"
)

// DefaultShader is used for objects whose material has no shader override.
const DefaultShader = "color.shader"

// MeshExt is the file extension of mesh assets referenced by a scene.
const MeshExt = ".mesh"

// TextureSlot binds a texture path to a numbered sampler slot.
type TextureSlot struct {
	Slot int
	Path string
}

// SceneMaterial is the already-resolved material of an object.
type SceneMaterial struct {
	Shader   string        // Shader file; empty selects the writer's default
	Textures []TextureSlot // Empty paths are unpopulated slots
}

// SceneObject is one placed object instance.
type SceneObject struct {
	Name     string
	Position math.Vec3
	Rotation math.Quat
	Material *SceneMaterial // nil when the object has no resolvable material
}

// MeshRef returns the mesh asset shared by every instance of this object.
func (o *SceneObject) MeshRef() string {
	return BaseName(o.Name) + MeshExt
}

// BaseName strips a trailing ".NNN" duplicate-instance suffix, so that
// "Box.001" and "Box.002" both resolve to "Box".
func BaseName(name string) string {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 || dot == len(name)-1 {
		return name
	}
	for _, r := range name[dot+1:] {
		if r < '0' || r > '9' {
			return name
		}
	}
	return name[:dot]
}

// MeshWriterFunc writes the mesh asset meshName using obj's geometry. It is
// called once per distinct mesh in a document.
type MeshWriterFunc func(meshName string, obj SceneObject) error

// SkippedObject records an object left out of the document.
type SkippedObject struct {
	Name string
	Err  error
}

// SceneReport summarizes a written document.
type SceneReport struct {
	Objects []string        // Object names written, in order
	Meshes  []string        // Mesh assets written, in order
	Skipped []SkippedObject // Objects skipped for missing materials
}

// SceneWriter serializes scene documents.
type SceneWriter struct {
	// DefaultShader replaces an empty material shader. Defaults to DefaultShader.
	DefaultShader string
}

// WriteScene writes objs to w with a default SceneWriter.
func WriteScene(w io.Writer, objs []SceneObject, meshWriter MeshWriterFunc) (*SceneReport, error) {
	var sw SceneWriter
	return sw.Write(w, objs, meshWriter)
}

// Write serializes objs to w in order. Objects without a material are
// skipped and reported; the first mesh named by a kept object is passed to
// meshWriter, later instances only reference it. A meshWriter error wrapping
// ErrMissingMaterial skips that object; any other error aborts the document.
func (sw *SceneWriter) Write(w io.Writer, objs []SceneObject, meshWriter MeshWriterFunc) (*SceneReport, error) {
	report := &SceneReport{}
	exported := make(map[string]bool)

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("<scene>\n"); err != nil {
		return report, ioError("writing scene", err)
	}

	for i := range objs {
		obj := objs[i]
		if obj.Material == nil {
			report.Skipped = append(report.Skipped, SkippedObject{
				Name: obj.Name,
				Err:  fmt.Errorf("%w: object %q", ErrMissingMaterial, obj.Name),
			})
			continue
		}

		mesh := obj.MeshRef()
		if !exported[mesh] && meshWriter != nil {
			if err := meshWriter(mesh, obj); err != nil {
				if errors.Is(err, ErrMissingMaterial) {
					report.Skipped = append(report.Skipped, SkippedObject{Name: obj.Name, Err: err})
					continue
				}
				return report, fmt.Errorf("writing mesh %s for %q: %w", mesh, obj.Name, err)
			}
		}
		if !exported[mesh] {
			exported[mesh] = true
			report.Meshes = append(report.Meshes, mesh)
		}

		if _, err := bw.WriteString(sw.objectBlock(&obj, mesh)); err != nil {
			return report, ioError("writing scene", err)
		}
		report.Objects = append(report.Objects, obj.Name)
	}

	if _, err := bw.WriteString("</scene>\n"); err != nil {
		return report, ioError("writing scene", err)
	}
	if err := bw.Flush(); err != nil {
		return report, ioError("flushing scene", err)
	}
	return report, nil
}

func (sw *SceneWriter) objectBlock(obj *SceneObject, mesh string) string {
	shader := obj.Material.Shader
	if shader == "" {
		shader = sw.DefaultShader
	}
	if shader == "" {
		shader = DefaultShader
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<object name="%s" shader="%s" mesh="%s"`, obj.Name, shader, mesh)
	for _, tex := range populatedSlots(obj.Material.Textures) {
		fmt.Fprintf(&b, ` texture%d="%s"`, tex.Slot, tex.Path)
	}
	b.WriteString(">\n")

	p, r := obj.Position, obj.Rotation
	fmt.Fprintf(&b, "  <position x=\"%s\" y=\"%s\" z=\"%s\" />\n",
		formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
	fmt.Fprintf(&b, "  <rotation x=\"%s\" y=\"%s\" z=\"%s\" w=\"%s\" />\n",
		formatFloat(r.X), formatFloat(r.Y), formatFloat(r.Z), formatFloat(r.W))
	b.WriteString("</object>\n")
	return b.String()
}

// populatedSlots returns the slots with a texture path, ordered by slot.
func populatedSlots(slots []TextureSlot) []TextureSlot {
	out := make([]TextureSlot, 0, len(slots))
	for _, s := range slots {
		if s.Path != "" {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b TextureSlot) int { return a.Slot - b.Slot })
	return out
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', 6, 32)
}

// WriteFile writes a scene document to path. The document only appears
// once complete; mesh assets written by meshWriter before a failure remain.
func (sw *SceneWriter) WriteFile(path string, objs []SceneObject, meshWriter MeshWriterFunc) (*SceneReport, error) {
	var report *SceneReport
	err := writeFileAtomic(path, func(w io.Writer) error {
		var err error
		report, err = sw.Write(w, objs, meshWriter)
		return err
	})
	return report, err
}

// SceneEntry is an object read back from a scene document.
type SceneEntry struct {
	Name     string
	Shader   string
	Mesh     string
	Textures []TextureSlot
	Position math.Vec3
	Rotation math.Quat
}

// Scene is a parsed scene document.
type Scene struct {
	Objects  []SceneEntry
	Warnings []string // Objects skipped for missing nodes or attributes
}

// ParseScene parses a scene document. Objects lacking a position or
// rotation node, or any of their components, are skipped with a warning.
func ParseScene(data []byte) (*Scene, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	scene := &Scene{}

	var cur *SceneEntry
	var haveLoc, haveRot bool
	var bad string

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing scene: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "object":
				cur = &SceneEntry{}
				haveLoc, haveRot, bad = false, false, ""
				parseObjectAttrs(cur, t.Attr)
			case "position":
				if cur == nil {
					continue
				}
				v, err := parseComponents(t.Attr, "x", "y", "z")
				if err != nil {
					bad = "position: " + err.Error()
					continue
				}
				cur.Position = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
				haveLoc = true
			case "rotation":
				if cur == nil {
					continue
				}
				v, err := parseComponents(t.Attr, "x", "y", "z", "w")
				if err != nil {
					bad = "rotation: " + err.Error()
					continue
				}
				cur.Rotation = math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}
				haveRot = true
			}
		case xml.EndElement:
			if t.Name.Local != "object" || cur == nil {
				continue
			}
			switch {
			case bad != "":
				scene.Warnings = append(scene.Warnings, fmt.Sprintf("object %q: %s", cur.Name, bad))
			case !haveLoc || !haveRot:
				scene.Warnings = append(scene.Warnings, fmt.Sprintf("object %q: missing position or rotation", cur.Name))
			default:
				slices.SortFunc(cur.Textures, func(a, b TextureSlot) int { return a.Slot - b.Slot })
				scene.Objects = append(scene.Objects, *cur)
			}
			cur = nil
		}
	}

	return scene, nil
}

func parseObjectAttrs(e *SceneEntry, attrs []xml.Attr) {
	for _, a := range attrs {
		switch name := a.Name.Local; {
		case name == "name":
			e.Name = a.Value
		case name == "shader":
			e.Shader = a.Value
		case name == "mesh":
			e.Mesh = a.Value
		case strings.HasPrefix(name, "texture"):
			slot, err := strconv.Atoi(strings.TrimPrefix(name, "texture"))
			if err != nil || slot < 0 {
				continue
			}
			e.Textures = append(e.Textures, TextureSlot{Slot: slot, Path: a.Value})
		}
	}
}

func parseComponents(attrs []xml.Attr, names ...string) ([]float32, error) {
	out := make([]float32, len(names))
	for i, n := range names {
		idx := slices.IndexFunc(attrs, func(a xml.Attr) bool { return a.Name.Local == n })
		if idx < 0 {
			return nil, fmt.Errorf("missing %q", n)
		}
		f, err := strconv.ParseFloat(attrs[idx].Value, 32)
		if err != nil {
			return nil, fmt.Errorf("bad %q: %w", n, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// ParseSceneFile parses a scene document from disk.
func ParseSceneFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError("reading scene file", err)
	}
	return ParseScene(data)
}
