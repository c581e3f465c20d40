// Mesh container codec.
//
// Layout (little-endian, no padding):
//
//	offset 0:  uint32 format version       (1 or 2)
//	offset 4:  uint32 vertex count
//	offset 8:  uint32 index count
//	offset 12: uint32 vertex stride bytes  (24 + 8*uv channels)
//	offset 16: uint32 index stride bytes   (always 4)
//	offset 20: vertex records, then uint32 indices
//
// A vertex record is position(3×float32) normal(3×float32) followed by one
// uv(2×float32) pair per UV channel.

package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	gomath "math"
	"os"

	"github.com/Faultbox/rawmesh/pkg/math"
)

// MeshVersion is the mesh container format revision.
type MeshVersion uint32

const (
	// MeshV1 files were written before the exporter recomputed flat normals.
	MeshV1 MeshVersion = 1
	// MeshV2 honors the per-object flat shading flag.
	MeshV2 MeshVersion = 2

	// CurrentMeshVersion is written by default.
	CurrentMeshVersion = MeshV2
)

// Container constants.
const (
	MeshHeaderSize   = 20
	IndexStride      = 4
	baseVertexStride = 24
	uvStride         = 8
)

// maxElements is the largest vertex or index count the header can carry.
var maxElements uint64 = gomath.MaxUint32

// String returns the version as "vN".
func (v MeshVersion) String() string {
	return fmt.Sprintf("v%d", uint32(v))
}

// Valid reports whether the version is one this codec reads and writes.
func (v MeshVersion) Valid() bool {
	return v == MeshV1 || v == MeshV2
}

// HonorsFlatNormals reports whether meshes of this version replace vertex
// normals with face normals for objects flagged as flat shaded.
func (v MeshVersion) HonorsFlatNormals() bool {
	return v >= MeshV2
}

// VertexStride returns the record size for a vertex with uvChannels UV pairs.
func VertexStride(uvChannels int) uint32 {
	return uint32(baseVertexStride + uvStride*uvChannels)
}

// MeshVertex is one merged vertex. Its index in MeshBuffers.Vertices is its
// identity.
type MeshVertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UVs      []math.Vec2
}

// Equal reports whether every field of v and other is bit-for-bit identical.
func (v *MeshVertex) Equal(other *MeshVertex) bool {
	return v.Position.BitsEqual(other.Position) && v.SameAttributes(other.Normal, other.UVs)
}

// SameAttributes reports whether v carries exactly this normal and UV set.
func (v *MeshVertex) SameAttributes(normal math.Vec3, uvs []math.Vec2) bool {
	if !v.Normal.BitsEqual(normal) || len(v.UVs) != len(uvs) {
		return false
	}
	for i := range uvs {
		if !v.UVs[i].BitsEqual(uvs[i]) {
			return false
		}
	}
	return true
}

// MeshBuffers holds a deduplicated vertex buffer and its triangle indices.
type MeshBuffers struct {
	Vertices []MeshVertex
	Indices  []uint32
}

// Equal reports whether both buffers hold bit-identical vertices and indices.
func (b *MeshBuffers) Equal(other *MeshBuffers) bool {
	if len(b.Vertices) != len(other.Vertices) || len(b.Indices) != len(other.Indices) {
		return false
	}
	for i := range b.Vertices {
		if !b.Vertices[i].Equal(&other.Vertices[i]) {
			return false
		}
	}
	for i := range b.Indices {
		if b.Indices[i] != other.Indices[i] {
			return false
		}
	}
	return true
}

// MeshHeader is the fixed 20-byte mesh file header.
type MeshHeader struct {
	Version      MeshVersion
	VertexCount  uint32
	IndexCount   uint32
	VertexStride uint32
	IndexStride  uint32
}

// UVChannels returns the number of UV pairs per vertex record.
func (h MeshHeader) UVChannels() int {
	return int(h.VertexStride-baseVertexStride) / uvStride
}

// MeshFile is a decoded mesh file.
type MeshFile struct {
	Header     MeshHeader
	UVChannels int
	Buffers    MeshBuffers
}

// EncodeMesh validates buf and writes it to w as a mesh file of the given
// version. Nothing is written when validation fails.
func EncodeMesh(w io.Writer, version MeshVersion, buf *MeshBuffers, uvChannels int) error {
	hdr, err := NewMeshHeader(version, buf, uvChannels)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return ioError("writing mesh header", err)
	}

	rec := make([]byte, 0, hdr.VertexStride)
	for i := range buf.Vertices {
		rec = appendVertex(rec[:0], &buf.Vertices[i])
		if _, err := bw.Write(rec); err != nil {
			return ioError("writing vertex records", err)
		}
	}

	var idx [IndexStride]byte
	for _, ix := range buf.Indices {
		binary.LittleEndian.PutUint32(idx[:], ix)
		if _, err := bw.Write(idx[:]); err != nil {
			return ioError("writing index records", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return ioError("flushing mesh", err)
	}
	return nil
}

// NewMeshHeader checks buf against the container invariants and returns the
// header that EncodeMesh would write for it.
func NewMeshHeader(version MeshVersion, buf *MeshBuffers, uvChannels int) (MeshHeader, error) {
	if !version.Valid() {
		return MeshHeader{}, fmt.Errorf("%w: %s", ErrUnsupportedMeshVersion, version)
	}
	if uvChannels < 0 || uint64(baseVertexStride)+uint64(uvStride)*uint64(uvChannels) > gomath.MaxUint32 {
		return MeshHeader{}, fmt.Errorf("%w: %d uv channels", ErrInvariantViolation, uvChannels)
	}
	if uint64(len(buf.Vertices)) > maxElements {
		return MeshHeader{}, fmt.Errorf("%w: %d vertices", ErrOverflow, len(buf.Vertices))
	}
	if uint64(len(buf.Indices)) > maxElements {
		return MeshHeader{}, fmt.Errorf("%w: %d indices", ErrOverflow, len(buf.Indices))
	}

	for i := range buf.Vertices {
		if n := len(buf.Vertices[i].UVs); n != uvChannels {
			return MeshHeader{}, fmt.Errorf("%w: vertex %d has %d uv channels, stride declares %d",
				ErrInvariantViolation, i, n, uvChannels)
		}
	}
	for i, ix := range buf.Indices {
		if uint64(ix) >= uint64(len(buf.Vertices)) {
			return MeshHeader{}, fmt.Errorf("%w: index %d = %d, vertex count %d",
				ErrInvariantViolation, i, ix, len(buf.Vertices))
		}
	}

	return MeshHeader{
		Version:      version,
		VertexCount:  uint32(len(buf.Vertices)),
		IndexCount:   uint32(len(buf.Indices)),
		VertexStride: VertexStride(uvChannels),
		IndexStride:  IndexStride,
	}, nil
}

func appendVertex(rec []byte, v *MeshVertex) []byte {
	rec = appendFloat(rec, v.Position.X)
	rec = appendFloat(rec, v.Position.Y)
	rec = appendFloat(rec, v.Position.Z)
	rec = appendFloat(rec, v.Normal.X)
	rec = appendFloat(rec, v.Normal.Y)
	rec = appendFloat(rec, v.Normal.Z)
	for _, uv := range v.UVs {
		rec = appendFloat(rec, uv.X)
		rec = appendFloat(rec, uv.Y)
	}
	return rec
}

func appendFloat(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, gomath.Float32bits(f))
}

// WriteMeshFile writes a mesh file to path. The file only appears once it
// is complete; on failure no file is left behind.
func WriteMeshFile(path string, version MeshVersion, buf *MeshBuffers, uvChannels int) error {
	// Validate before touching the filesystem.
	if _, err := NewMeshHeader(version, buf, uvChannels); err != nil {
		return err
	}
	return writeFileAtomic(path, func(w io.Writer) error {
		return EncodeMesh(w, version, buf, uvChannels)
	})
}

// ParseMeshHeader decodes and validates the 20-byte header at the start of data.
func ParseMeshHeader(data []byte) (MeshHeader, error) {
	if len(data) < MeshHeaderSize {
		return MeshHeader{}, ErrTruncatedMeshData
	}

	var hdr MeshHeader
	if err := binary.Read(bytes.NewReader(data[:MeshHeaderSize]), binary.LittleEndian, &hdr); err != nil {
		return MeshHeader{}, ErrTruncatedMeshData
	}

	if !hdr.Version.Valid() {
		return MeshHeader{}, fmt.Errorf("%w: %s", ErrUnsupportedMeshVersion, hdr.Version)
	}
	if hdr.IndexStride != IndexStride {
		return MeshHeader{}, fmt.Errorf("%w: index stride %d", ErrInvalidMeshHeader, hdr.IndexStride)
	}
	if hdr.VertexStride < baseVertexStride || (hdr.VertexStride-baseVertexStride)%uvStride != 0 {
		return MeshHeader{}, fmt.Errorf("%w: vertex stride %d", ErrInvalidMeshHeader, hdr.VertexStride)
	}
	return hdr, nil
}

// ParseMesh parses mesh data from a byte slice. Trailing bytes are ignored.
func ParseMesh(data []byte) (*MeshFile, error) {
	hdr, err := ParseMeshHeader(data)
	if err != nil {
		return nil, err
	}

	vertexBytes := uint64(hdr.VertexCount) * uint64(hdr.VertexStride)
	indexBytes := uint64(hdr.IndexCount) * IndexStride
	if uint64(len(data)) < MeshHeaderSize+vertexBytes+indexBytes {
		return nil, fmt.Errorf("%w: need %d bytes, have %d",
			ErrTruncatedMeshData, MeshHeaderSize+vertexBytes+indexBytes, len(data))
	}

	mf := &MeshFile{
		Header:     hdr,
		UVChannels: hdr.UVChannels(),
	}

	p := data[MeshHeaderSize:]
	mf.Buffers.Vertices = make([]MeshVertex, hdr.VertexCount)
	for i := range mf.Buffers.Vertices {
		v := &mf.Buffers.Vertices[i]
		v.Position = math.Vec3{X: readFloat(p, 0), Y: readFloat(p, 1), Z: readFloat(p, 2)}
		v.Normal = math.Vec3{X: readFloat(p, 3), Y: readFloat(p, 4), Z: readFloat(p, 5)}
		if mf.UVChannels > 0 {
			v.UVs = make([]math.Vec2, mf.UVChannels)
			for c := range v.UVs {
				v.UVs[c] = math.Vec2{X: readFloat(p, 6+2*c), Y: readFloat(p, 7+2*c)}
			}
		}
		p = p[hdr.VertexStride:]
	}

	mf.Buffers.Indices = make([]uint32, hdr.IndexCount)
	for i := range mf.Buffers.Indices {
		ix := binary.LittleEndian.Uint32(p[IndexStride*i:])
		if ix >= hdr.VertexCount {
			return nil, fmt.Errorf("%w: index %d = %d, vertex count %d",
				ErrInvariantViolation, i, ix, hdr.VertexCount)
		}
		mf.Buffers.Indices[i] = ix
	}

	return mf, nil
}

// readFloat returns the n-th little-endian float32 of p.
func readFloat(p []byte, n int) float32 {
	return gomath.Float32frombits(binary.LittleEndian.Uint32(p[4*n:]))
}

// ReadMesh reads a whole mesh file from r.
func ReadMesh(r io.Reader) (*MeshFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ioError("reading mesh", err)
	}
	return ParseMesh(data)
}

// ParseMeshFile parses a mesh file from disk.
func ParseMeshFile(path string) (*MeshFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError("reading mesh file", err)
	}
	return ParseMesh(data)
}
