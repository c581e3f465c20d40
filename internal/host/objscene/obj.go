package objscene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/rawmesh/pkg/math"
)

// none marks an absent texture or normal reference.
const none = -1

// File is a parsed Wavefront OBJ file. Face references are resolved to
// zero-based indices into the file's attribute arrays.
type File struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	Groups    []*Group
	Warnings  []string
}

// Group is an "o" or "g" section. Faces before the first section belong to
// a group with an empty name.
type Group struct {
	Name  string
	Faces []Face
}

// Face is one polygon.
type Face struct {
	Corners []Ref
}

// Ref is one face corner's position, texture and normal index.
type Ref struct {
	V, VT, VN int
}

type decoder struct {
	file    *File
	current *Group
	line    int
	ignored map[string]bool
}

// Parse reads an OBJ file.
func Parse(r io.Reader) (*File, error) {
	dec := &decoder{file: &File{}, ignored: make(map[string]bool)}
	bufin := bufio.NewReader(r)
	dec.line = 1
	for {
		// Reads next line and abort on errors (not EOF)
		line, err := bufin.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if perr := dec.parseLine(line); perr != nil {
			return nil, perr
		}
		if err == io.EOF {
			break
		}
		dec.line++
	}
	return dec.file, nil
}

// parseLine dispatches one line to the statement parsers.
func (dec *decoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch ltype := fields[0]; ltype {
	case "o", "g":
		return dec.parseGroup(fields[1:])
	case "v":
		v, err := dec.parseFloats(fields[1:], 3, "v")
		if err != nil {
			return err
		}
		dec.file.Positions = append(dec.file.Positions, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
	case "vn":
		v, err := dec.parseFloats(fields[1:], 3, "vn")
		if err != nil {
			return err
		}
		dec.file.Normals = append(dec.file.Normals, math.Vec3{X: v[0], Y: v[1], Z: v[2]})
	case "vt":
		v, err := dec.parseFloats(fields[1:], 2, "vt")
		if err != nil {
			return err
		}
		dec.file.UVs = append(dec.file.UVs, math.Vec2{X: v[0], Y: v[1]})
	case "f":
		return dec.parseFace(fields[1:])
	case "s", "mtllib", "usemtl":
		// Smoothing groups are replaced by the object's flat flag and
		// materials come from the manifest.
	default:
		if !dec.ignored[ltype] {
			dec.ignored[ltype] = true
			dec.file.Warnings = append(dec.file.Warnings, fmt.Sprintf("line %d: statement %q not supported", dec.line, ltype))
		}
	}
	return nil
}

func (dec *decoder) parseGroup(fields []string) error {
	if len(fields) < 1 {
		return dec.formatError("group line with no name")
	}
	dec.current = &Group{Name: strings.Join(fields, " ")}
	dec.file.Groups = append(dec.file.Groups, dec.current)
	return nil
}

func (dec *decoder) parseFloats(fields []string, n int, kind string) ([]float32, error) {
	if len(fields) < n {
		return nil, dec.formatError(fmt.Sprintf("less than %d values in %q line", n, kind))
	}
	out := make([]float32, n)
	for i, f := range fields[:n] {
		val, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, dec.formatError(err.Error())
		}
		out[i] = float32(val)
	}
	return out, nil
}

// parseFace parses a face description line:
// f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
func (dec *decoder) parseFace(fields []string) error {
	if dec.current == nil {
		dec.current = &Group{}
		dec.file.Groups = append(dec.file.Groups, dec.current)
	}
	if len(fields) < 3 {
		return dec.formatError("face line with less than 3 vertices")
	}

	face := Face{Corners: make([]Ref, len(fields))}
	for pos, f := range fields {
		parts := strings.Split(f, "/")
		if len(parts) > 3 {
			return dec.formatError("face vertex " + strconv.Quote(f) + " has too many parts")
		}

		ref := Ref{VT: none, VN: none}
		var err error
		if ref.V, err = dec.index(parts[0], len(dec.file.Positions)); err != nil {
			return err
		}
		if len(parts) > 1 && parts[1] != "" {
			if ref.VT, err = dec.index(parts[1], len(dec.file.UVs)); err != nil {
				return err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if ref.VN, err = dec.index(parts[2], len(dec.file.Normals)); err != nil {
				return err
			}
		}
		face.Corners[pos] = ref
	}

	dec.current.Faces = append(dec.current.Faces, face)
	return nil
}

// index resolves a one-based or negative (relative to the last parsed
// element) reference to a zero-based index.
func (dec *decoder) index(s string, count int) (int, error) {
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, dec.formatError("bad index " + strconv.Quote(s))
	}
	switch {
	case val > 0:
		return val - 1, nil
	case val < 0 && count+val >= 0:
		return count + val, nil
	case val < 0:
		return 0, dec.formatError(fmt.Sprintf("relative index %d before start of data", val))
	default:
		return 0, dec.formatError("index value equal to 0")
	}
}

// ErrMalformedOBJ reports an OBJ statement that could not be parsed.
var ErrMalformedOBJ = errors.New("malformed obj")

func (dec *decoder) formatError(msg string) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedOBJ, dec.line, msg)
}
