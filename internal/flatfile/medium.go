package flatfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mesh-intelligence/tracker/internal/record"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// row is one stored record as read from a file. Values are ordered by the
// schema. Err is set when the medium could not parse the record at all;
// such rows carry no values.
type row struct {
	pos    int
	values []string
	err    error
}

// medium is a flat-file encoding of a collection of records.
type medium interface {
	ext() string
	// read parses a whole file. Per-record problems are reported on the
	// row; only problems that make the file unreadable are returned.
	read(r io.Reader, s record.Schema) ([]row, error)
	write(w io.Writer, s record.Schema, rows [][]string) error
}

// orderValues maps values keyed by stored column name onto schema order.
// Unknown columns are ignored and missing columns read as empty.
func orderValues(s record.Schema, byName map[string]string) []string {
	names := record.Names(s)
	values := make([]string, len(names))
	for i, n := range names {
		values[i] = byName[n]
	}
	return values
}

// readFile reads every row of the file at path. A missing file is an empty
// collection.
func readFile(m medium, path string, s record.Schema) ([]row, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", types.ErrStorageIO, path, err)
	}
	defer f.Close()

	rows, err := m.read(f, s)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// writeFile atomically replaces the file at path with rows.
func writeFile(m medium, path string, s record.Schema, rows [][]string) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return m.write(w, s, rows)
	})
}
