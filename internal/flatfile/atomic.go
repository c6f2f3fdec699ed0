package flatfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// writeFileAtomic writes a file using the temp-file, fsync, rename
// pattern, so readers see either the old or the new content.
func writeFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", types.ErrStorageIO, err)
	}
	tmpName := tmp.Name()

	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s %s: %w", types.ErrStorageIO, step, path, err)
	}

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		return fail("writing", err)
	}
	if err := w.Flush(); err != nil {
		return fail("flushing", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file: %w", types.ErrStorageIO, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming temp file: %w", types.ErrStorageIO, err)
	}
	return nil
}
