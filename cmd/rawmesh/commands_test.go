package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/rawmesh/internal/config"
)

const triOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

const levelYAML = `
objects:
  - name: Tri
    source: tri.obj
    material: {}
  - name: Lamp
    source: tri.obj
`

func TestReexport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(triOBJ), 0644))
	manifest := filepath.Join(dir, "level.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(levelYAML), 0644))
	out := filepath.Join(dir, "level.scene")

	core, logs := observer.New(zapcore.InfoLevel)
	run := reexport(config.Default(), manifest, out, zap.New(core))
	require.NoError(t, run())

	entries := logs.FilterMessage("exported").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, out, fields["scene"])
	assert.Equal(t, int64(1), fields["objects"])
	assert.Equal(t, int64(1), fields["skipped"])
	assert.FileExists(t, filepath.Join(dir, "Tri.mesh"))

	require.NoError(t, os.Remove(manifest))
	assert.Error(t, run())
	assert.Equal(t, 1, logs.FilterMessage("exported").Len())
}
