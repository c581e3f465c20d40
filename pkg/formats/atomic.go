package formats

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// writeFileAtomic streams fn's output into a temporary file next to path and
// renames it into place once fn and Close succeed. On any failure the
// temporary file is removed and path is left untouched.
func writeFileAtomic(path string, fn func(io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return ioError("creating "+path, err)
	}
	tmp := f.Name()

	defer func() {
		if err != nil {
			err = multierr.Append(err, removeIfExists(tmp))
		}
	}()

	if err := fn(f); err != nil {
		return multierr.Append(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return ioError("closing "+path, err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		return ioError("chmod "+path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return ioError("renaming "+path, err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
