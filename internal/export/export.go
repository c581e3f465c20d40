// Package export turns host scenes into scene documents and mesh files.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/rawmesh/internal/config"
	"github.com/Faultbox/rawmesh/internal/host"
	"github.com/Faultbox/rawmesh/internal/model"
	"github.com/Faultbox/rawmesh/pkg/formats"
)

// Exporter writes scenes and meshes with one configuration.
type Exporter struct {
	cfg config.ExportConfig
	log *zap.Logger
}

// New creates an exporter. A nil logger discards diagnostics.
func New(cfg config.ExportConfig, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{cfg: cfg, log: log}
}

// Report describes a finished scene export.
type Report struct {
	Scene   string                  // Scene document path
	Objects []string                // Objects written, in order
	Meshes  []string                // Mesh file paths written, in order
	Skipped []formats.SkippedObject // Objects left out for missing materials
}

// ExportScene writes the visible objects of scene to scenePath and their
// meshes to the configured output directory, or next to the scene when none
// is set. Objects without a material are skipped and logged. Any other
// failure aborts the export and leaves no scene document behind.
func (e *Exporter) ExportScene(scene host.Scene, scenePath string) (*Report, error) {
	objs, err := scene.VisibleMeshObjects()
	if err != nil {
		return nil, fmt.Errorf("listing scene objects: %w", err)
	}

	meshDir := e.cfg.OutputDir
	if meshDir == "" {
		meshDir = filepath.Dir(scenePath)
	}
	if err := os.MkdirAll(meshDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", formats.ErrIO, meshDir, err)
	}

	byName := make(map[string]host.Object, len(objs))
	placed := make([]formats.SceneObject, 0, len(objs))
	for _, obj := range objs {
		name := obj.Name()
		if _, dup := byName[name]; !dup {
			byName[name] = obj
		}
		pos, rot := obj.Transform()
		so := formats.SceneObject{Name: name, Position: pos, Rotation: rot}
		if mat, ok := obj.Material(); ok {
			so.Material = mat.SceneMaterial()
		}
		placed = append(placed, so)
	}

	writeMesh := func(meshName string, so formats.SceneObject) error {
		return e.ExportMesh(byName[so.Name], filepath.Join(meshDir, meshName))
	}

	sw := formats.SceneWriter{DefaultShader: e.cfg.DefaultShader}
	sr, err := sw.WriteFile(scenePath, placed, writeMesh)
	if err != nil {
		return nil, fmt.Errorf("exporting scene %s: %w", scenePath, err)
	}

	report := &Report{Scene: scenePath, Objects: sr.Objects, Skipped: sr.Skipped}
	for _, m := range sr.Meshes {
		report.Meshes = append(report.Meshes, filepath.Join(meshDir, m))
	}
	for _, s := range sr.Skipped {
		e.log.Warn("object skipped", zap.String("object", s.Name), zap.Error(s.Err))
	}
	e.log.Info("scene exported",
		zap.String("path", scenePath),
		zap.Int("objects", len(report.Objects)),
		zap.Int("meshes", len(report.Meshes)),
		zap.Int("skipped", len(report.Skipped)))
	return report, nil
}

// ExportMesh writes the mesh file of a single object to path.
func (e *Exporter) ExportMesh(obj host.Object, path string) error {
	g, err := obj.Triangles()
	if err != nil {
		return fmt.Errorf("evaluating %q: %w", obj.Name(), err)
	}
	if g == nil {
		return fmt.Errorf("evaluating %q: %w: no geometry", obj.Name(), formats.ErrInvariantViolation)
	}

	version := e.cfg.MeshVersion()
	opts := model.MergeOptions{
		Policy:      e.cfg.MergePolicy(),
		FlatNormals: obj.FlatShading() && version.HonorsFlatNormals(),
	}
	g = limitUVs(g, e.cfg.UVChannelLimit())

	buf, err := model.Merge(g, opts)
	if err != nil {
		return fmt.Errorf("merging %q: %w", obj.Name(), err)
	}
	if err := formats.WriteMeshFile(path, version, buf, g.UVChannels); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	e.log.Debug("mesh written",
		zap.String("object", obj.Name()),
		zap.String("path", path),
		zap.Stringer("version", version),
		zap.Stringer("policy", opts.Policy),
		zap.Int("vertices", len(buf.Vertices)),
		zap.Int("base_vertices", len(g.Positions)),
		zap.Int("triangles", g.TriangleCount()),
		zap.Int("uv_channels", g.UVChannels))
	return nil
}

// limitUVs returns g with at most n UV channels. g itself is not modified.
func limitUVs(g *model.Geometry, n int) *model.Geometry {
	if g.UVChannels <= n {
		return g
	}
	out := *g
	out.UVChannels = n
	out.Faces = make([]model.Face, len(g.Faces))
	for fi, face := range g.Faces {
		corners := make([]model.Corner, len(face.Corners))
		for ci, c := range face.Corners {
			if len(c.UVs) > n {
				c.UVs = c.UVs[:n:n]
			}
			corners[ci] = c
		}
		out.Faces[fi] = model.Face{Corners: corners}
	}
	return &out
}
