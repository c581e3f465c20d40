// Package formats implements the two files consumed by the renderer: the raw
// little-endian mesh container (.mesh) and the bracketed scene document
// (.scene).
package formats

// Note: the mesh container codec lives in mesh.go, the scene document in scene.go.
