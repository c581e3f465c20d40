package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/rawmesh/internal/config"
	"github.com/Faultbox/rawmesh/internal/export"
	"github.com/Faultbox/rawmesh/internal/host"
	"github.com/Faultbox/rawmesh/internal/host/objscene"
	"github.com/Faultbox/rawmesh/internal/logger"
	"github.com/Faultbox/rawmesh/pkg/formats"
)

func cmdScene(args []string) {
	cfg, rest := setup("scene", args, 2, "scene [options] <manifest.yaml> <out.scene>")
	defer logger.Sync()

	report, err := exportScene(cfg, rest[0], rest[1])
	if err != nil {
		fail(err)
	}
	fmt.Printf("Scene:   %s\n", report.Scene)
	fmt.Printf("Objects: %d\n", len(report.Objects))
	fmt.Printf("Meshes:  %d\n", len(report.Meshes))
	if len(report.Skipped) > 0 {
		fmt.Printf("Skipped: %d\n", len(report.Skipped))
		for _, s := range report.Skipped {
			fmt.Printf("  %-24s %v\n", s.Name, s.Err)
		}
	}
}

func exportScene(cfg *config.Config, manifest, out string) (*export.Report, error) {
	scene, err := objscene.Load(manifest, buildOptions(cfg), logger.Named("objscene"))
	if err != nil {
		return nil, err
	}
	defer scene.Close()
	exp := export.New(cfg.Export, logger.Named("export"))
	return exp.ExportScene(scene, out)
}

func cmdMesh(args []string) {
	cfg, rest := setup("mesh", args, 3, "mesh [options] <manifest.yaml> <object> <out.mesh>")
	defer logger.Sync()

	scene, err := objscene.Load(rest[0], buildOptions(cfg), logger.Named("objscene"))
	if err != nil {
		fail(err)
	}
	defer scene.Close()
	objs, err := scene.VisibleMeshObjects()
	if err != nil {
		fail(err)
	}

	var target host.Object
	for _, o := range objs {
		if o.Name() == rest[1] {
			target = o
			break
		}
	}
	if target == nil {
		fail(fmt.Errorf("no visible mesh object %q in %s", rest[1], rest[0]))
	}

	exp := export.New(cfg.Export, logger.Named("export"))
	if err := exp.ExportMesh(target, rest[2]); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s\n", rest[2])
}

func cmdWatch(args []string) {
	cfg, rest := setup("watch", args, 2, "watch [options] <manifest.yaml> <out.scene>")
	defer logger.Sync()
	manifest, out := rest[0], rest[1]
	log := logger.Named("watch")

	run := reexport(cfg, manifest, out, log)
	if err := run(); err != nil {
		log.Error("export failed", zap.Error(err))
	}

	paths := []string{manifest}
	if scene, err := objscene.Load(manifest, buildOptions(cfg), logger.Named("objscene")); err == nil {
		sources, err := scene.Sources()
		scene.Close()
		if err != nil {
			fail(err)
		}
		paths = append(paths, sources...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exp := export.New(cfg.Export, log)
	if err := exp.Watch(ctx, paths, run); err != nil {
		fail(err)
	}
}

// reexport returns the export run that watch repeats on every change.
func reexport(cfg *config.Config, manifest, out string, log *zap.Logger) func() error {
	return func() error {
		report, err := exportScene(cfg, manifest, out)
		if err != nil {
			return err
		}
		log.Info("exported",
			zap.String("scene", report.Scene),
			zap.Int("objects", len(report.Objects)),
			zap.Int("skipped", len(report.Skipped)))
		return nil
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rawmesh info <file.mesh>")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fail(err)
	}
	h, err := formats.ParseMeshHeader(data)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Mesh:        %s\n", args[0])
	fmt.Printf("Version:     %s\n", h.Version)
	fmt.Printf("Vertices:    %d\n", h.VertexCount)
	fmt.Printf("Indices:     %d (%d triangles)\n", h.IndexCount, h.IndexCount/3)
	fmt.Printf("Stride:      %d bytes\n", h.VertexStride)
	fmt.Printf("UV channels: %d\n", h.UVChannels())
	fmt.Printf("Size:        %d bytes\n", len(data))
}

func cmdDump(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rawmesh dump <file.mesh|file.scene>")
		os.Exit(1)
	}
	path := args[0]

	if strings.EqualFold(filepath.Ext(path), formats.MeshExt) {
		dumpMesh(path)
		return
	}
	dumpScene(path)
}

func dumpMesh(path string) {
	mf, err := formats.ParseMeshFile(path)
	if err != nil {
		fail(err)
	}

	fmt.Printf("# %s %s, %d vertices, %d indices, %d uv channels\n",
		path, mf.Header.Version, mf.Header.VertexCount, mf.Header.IndexCount, mf.UVChannels)
	for i, v := range mf.Buffers.Vertices {
		fmt.Printf("v %4d  pos %g %g %g  n %g %g %g", i,
			v.Position.X, v.Position.Y, v.Position.Z, v.Normal.X, v.Normal.Y, v.Normal.Z)
		for ch, uv := range v.UVs {
			fmt.Printf("  uv%d %g %g", ch, uv.X, uv.Y)
		}
		fmt.Println()
	}
	idx := mf.Buffers.Indices
	for i := 0; i+2 < len(idx); i += 3 {
		fmt.Printf("f %d %d %d\n", idx[i], idx[i+1], idx[i+2])
	}
}

func dumpScene(path string) {
	scene, err := formats.ParseSceneFile(path)
	if err != nil {
		fail(err)
	}

	for _, o := range scene.Objects {
		fmt.Printf("%-24s mesh=%s shader=%s\n", o.Name, o.Mesh, o.Shader)
		fmt.Printf("  position %g %g %g\n", o.Position.X, o.Position.Y, o.Position.Z)
		fmt.Printf("  rotation %g %g %g %g\n", o.Rotation.X, o.Rotation.Y, o.Rotation.Z, o.Rotation.W)
		for _, tex := range o.Textures {
			fmt.Printf("  texture%d %s\n", tex.Slot, tex.Path)
		}
	}
	for _, w := range scene.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}
