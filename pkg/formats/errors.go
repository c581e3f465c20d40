package formats

import "errors"

// Export error taxonomy. Every error returned by this module wraps exactly
// one of these, so callers can branch with errors.Is.
var (
	// ErrIO reports a sink or source that could not be written or read.
	ErrIO = errors.New("i/o error")
	// ErrUnsupportedTopology reports a face that is not a triangle.
	ErrUnsupportedTopology = errors.New("unsupported topology")
	// ErrMissingMaterial reports an object without a resolvable material.
	// It is the only non-fatal kind: the object is skipped.
	ErrMissingMaterial = errors.New("missing material")
	// ErrInvariantViolation reports an internal consistency failure such as a
	// stride mismatch or an out-of-range index.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrOverflow reports a vertex or index count beyond the 32-bit range.
	ErrOverflow = errors.New("count overflow")
)

// Mesh file parse errors.
var (
	ErrTruncatedMeshData      = errors.New("truncated mesh data")
	ErrUnsupportedMeshVersion = errors.New("unsupported mesh version")
	ErrInvalidMeshHeader      = errors.New("invalid mesh header")
)
