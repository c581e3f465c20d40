package objscene

import (
	"bytes"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/rawmesh/internal/assets"
	"github.com/Faultbox/rawmesh/internal/host"
	"github.com/Faultbox/rawmesh/internal/model"
	"github.com/Faultbox/rawmesh/pkg/encoding"
	"github.com/Faultbox/rawmesh/pkg/math"
)

// Scene is a host.Scene backed by a manifest. OBJ sources are read and
// parsed once per absolute path.
type Scene struct {
	manifest *Manifest
	opts     BuildOptions
	sources  *assets.Manager
	files    *assets.Cache[*File]
	log      *zap.Logger
}

// Load reads the manifest at path. Sources resolve relative to the
// manifest's directory.
func Load(path string, opts BuildOptions, log *zap.Logger) (*Scene, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("loading manifest %s: %w", path, err)
	}
	return New(m, filepath.Dir(path), opts, log), nil
}

// New wraps an already decoded manifest.
func New(m *Manifest, root string, opts BuildOptions, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		manifest: m,
		opts:     opts,
		sources:  assets.NewManager(root),
		files:    assets.NewCache[*File](),
		log:      log,
	}
}

// VisibleMeshObjects returns the entries that are neither hidden nor
// sourceless, in manifest order.
func (s *Scene) VisibleMeshObjects() ([]host.Object, error) {
	var objs []host.Object
	for i := range s.manifest.Objects {
		spec := &s.manifest.Objects[i]
		switch {
		case spec.Hidden:
			s.log.Debug("object hidden", zap.String("object", spec.Name))
		case spec.Source == "":
			s.log.Debug("object has no mesh", zap.String("object", spec.Name))
		default:
			objs = append(objs, &object{spec: spec, scene: s})
		}
	}
	return objs, nil
}

// Sources returns the paths of every OBJ file the manifest references.
func (s *Scene) Sources() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for i := range s.manifest.Objects {
		src := s.manifest.Objects[i].Source
		if src == "" {
			continue
		}
		abs, err := s.sources.Resolve(src)
		if err != nil {
			return nil, err
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
	}
	return out, nil
}

// Close logs cache statistics and drops every cached source.
func (s *Scene) Close() {
	hits, misses := s.files.Stats()
	_, read := s.sources.Stats()
	s.log.Debug("sources released",
		zap.Int("files", s.files.Len()),
		zap.Int("files_read", read),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses))
	s.files.Clear()
	s.sources.Close()
}

// file returns the parsed OBJ file at src.
func (s *Scene) file(src string) (*File, error) {
	abs, err := s.sources.Resolve(src)
	if err != nil {
		return nil, err
	}
	if f, ok := s.files.Get(abs); ok {
		return f, nil
	}

	_, data, err := s.sources.Load(abs)
	if err != nil {
		return nil, err
	}
	if data, err = encoding.ToUTF8(data, s.manifest.Encoding); err != nil {
		return nil, fmt.Errorf("reading %s: %w", abs, err)
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", abs, err)
	}
	for _, w := range f.Warnings {
		s.log.Warn("obj warning", zap.String("file", abs), zap.String("warning", w))
	}
	s.log.Debug("obj loaded",
		zap.String("file", abs),
		zap.Int("positions", len(f.Positions)),
		zap.Int("groups", len(f.Groups)))
	s.files.Set(abs, f)
	return f, nil
}

type object struct {
	spec  *ObjectSpec
	scene *Scene
}

func (o *object) Name() string { return o.spec.Name }

func (o *object) Triangles() (*model.Geometry, error) {
	f, err := o.scene.file(o.spec.Source)
	if err != nil {
		return nil, err
	}
	g, err := f.Geometry(o.spec.Object, o.scene.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.spec.Source, err)
	}
	return g, nil
}

func (o *object) Transform() (math.Vec3, math.Quat) { return o.spec.Transform() }

func (o *object) Material() (*host.Material, bool) {
	m := o.spec.Material
	if m == nil {
		return nil, false
	}
	return &host.Material{ShaderOverride: m.Shader, TextureSlots: m.Textures}, true
}

func (o *object) FlatShading() bool { return o.spec.Flat }
