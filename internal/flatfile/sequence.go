package flatfile

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/mesh-intelligence/tracker/internal/record"
)

// sequenceSchema lays out the high-water-mark collection: one record per
// table holding the largest id ever assigned in it.
type sequenceSchema struct{}

func (sequenceSchema) Table() string   { return "sequences" }
func (sequenceSchema) Element() string { return "sequence" }

func (sequenceSchema) Fields() []record.Field {
	return []record.Field{
		{Name: "table", Kind: record.KindText},
		{Name: "high_water", Kind: record.KindInt},
	}
}

// sequences persists one high-water mark per table. Marks never decrease,
// so ids freed by deletes are never handed out again.
type sequences struct {
	b *Backend
}

func (s *sequences) path() string {
	return filepath.Join(s.b.dir, sequenceSchema{}.Table()+s.b.medium.ext())
}

// load returns the marks keyed by table. Unparseable entries are ignored;
// the table scan in next still guards against reuse.
func (s *sequences) load() (map[string]int64, error) {
	rows, err := readFile(s.b.medium, s.path(), sequenceSchema{})
	if err != nil {
		return nil, err
	}
	marks := make(map[string]int64, len(rows))
	for _, r := range rows {
		if r.err != nil || r.values[0] == "" {
			continue
		}
		n, err := strconv.ParseInt(r.values[1], 10, 64)
		if err != nil {
			continue
		}
		if n > marks[r.values[0]] {
			marks[r.values[0]] = n
		}
	}
	return marks, nil
}

// next returns the id to assign in table: one past the larger of the
// persisted mark and the largest id currently stored.
func (s *sequences) next(table string, maxStored int64) (int64, error) {
	marks, err := s.load()
	if err != nil {
		return 0, fmt.Errorf("loading sequences: %w", err)
	}
	return max(marks[table], maxStored) + 1, nil
}

// advance raises the mark for table to id.
func (s *sequences) advance(table string, id int64) error {
	marks, err := s.load()
	if err != nil {
		return fmt.Errorf("loading sequences: %w", err)
	}
	if marks[table] >= id {
		return nil
	}
	marks[table] = id

	rows := make([][]string, 0, len(marks))
	for _, name := range slices.Sorted(maps.Keys(marks)) {
		rows = append(rows, []string{name, strconv.FormatInt(marks[name], 10)})
	}
	return writeFile(s.b.medium, s.path(), sequenceSchema{}, rows)
}

// highWater returns the persisted mark for table.
func (s *sequences) highWater(table string) (int64, error) {
	marks, err := s.load()
	if err != nil {
		return 0, err
	}
	return marks[table], nil
}
