package flatfile

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/internal/record"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// table implements types.Table for one entity type on a flat-file medium.
// Every operation reads the whole file, works in memory and rewrites the
// whole file. Nothing below the tracker checks references; integrity is
// enforced by the caller.
type table[T any] struct {
	b     *Backend
	codec record.Codec[T]
}

var _ types.Table[types.User] = (*table[types.User])(nil)

func newTable[T any](b *Backend, codec record.Codec[T]) *table[T] {
	return &table[T]{b: b, codec: codec}
}

func (t *table[T]) path() string {
	return filepath.Join(t.b.dir, t.codec.Table()+t.b.medium.ext())
}

func (t *table[T]) load() ([]row, error) {
	return readFile(t.b.medium, t.path(), t.codec)
}

// save rewrites the file. Rows the medium could not parse carry no values
// and are dropped; rows that only fail to decode are kept verbatim.
func (t *table[T]) save(rows []row) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if r.err != nil {
			t.b.log.Warn("dropping unreadable row on rewrite",
				zap.String("table", t.codec.Table()), zap.Int("row", r.pos), zap.Error(r.err))
			continue
		}
		out = append(out, r.values)
	}
	return writeFile(t.b.medium, t.path(), t.codec, out)
}

// rowInt parses the integer stored at field position i of r.
func rowInt(r row, i int) (int64, bool) {
	if r.err != nil || i >= len(r.values) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(r.values[i]), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func maxID(rows []row) int64 {
	var m int64
	for _, r := range rows {
		if id, ok := rowInt(r, 0); ok && id > m {
			m = id
		}
	}
	return m
}

// indexOf returns the position of the row whose id is id, or -1.
func indexOf(rows []row, id int64) int {
	for i, r := range rows {
		if rid, ok := rowInt(r, 0); ok && rid == id {
			return i
		}
	}
	return -1
}

func (t *table[T]) Create(entity T) (int64, error) {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	if !t.b.attached {
		return 0, types.ErrDetached
	}

	rows, err := t.load()
	if err != nil {
		return 0, err
	}
	id, err := t.b.seq.next(t.codec.Table(), maxID(rows))
	if err != nil {
		return 0, err
	}
	// The mark moves before the record is written: a failed save burns
	// the id, but a failed advance never leaves a stored record behind an
	// error.
	if err := t.b.seq.advance(t.codec.Table(), id); err != nil {
		return 0, fmt.Errorf("advancing %s sequence: %w", t.codec.Table(), err)
	}
	entity = t.codec.WithID(entity, id)
	rows = append(rows, row{pos: len(rows) + 1, values: t.codec.Encode(entity)})

	if err := t.save(rows); err != nil {
		return 0, err
	}
	return id, nil
}

func (t *table[T]) FindByID(id int64) (T, bool, error) {
	var zero T
	if id <= 0 {
		return zero, false, types.ErrInvalidID
	}
	t.b.mu.RLock()
	defer t.b.mu.RUnlock()
	if !t.b.attached {
		return zero, false, types.ErrDetached
	}

	rows, err := t.load()
	if err != nil {
		return zero, false, err
	}
	i := indexOf(rows, id)
	if i < 0 {
		return zero, false, nil
	}
	entity, err := t.codec.Decode(rows[i].values)
	if err != nil {
		return zero, false, fmt.Errorf("%s %d: %w", t.codec.Table(), id, err)
	}
	return entity, true, nil
}

func (t *table[T]) FindAll() ([]T, error) {
	t.b.mu.RLock()
	defer t.b.mu.RUnlock()
	if !t.b.attached {
		return nil, types.ErrDetached
	}

	rows, err := t.load()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		err := r.err
		if err == nil {
			var entity T
			if entity, err = t.codec.Decode(r.values); err == nil {
				out = append(out, entity)
				continue
			}
		}
		t.b.log.Warn("skipping malformed row",
			zap.String("table", t.codec.Table()), zap.Int("row", r.pos), zap.Error(err))
	}
	return out, nil
}

func (t *table[T]) Update(entity T) error {
	id := t.codec.ID(entity)
	if id <= 0 {
		return types.ErrInvalidID
	}
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	if !t.b.attached {
		return types.ErrDetached
	}

	rows, err := t.load()
	if err != nil {
		return err
	}
	i := indexOf(rows, id)
	if i < 0 {
		return fmt.Errorf("%s %d: %w", t.codec.Table(), id, types.ErrNotFound)
	}
	if _, err := t.codec.Decode(rows[i].values); err != nil {
		return fmt.Errorf("%s %d: %w", t.codec.Table(), id, err)
	}
	rows[i].values = t.codec.Encode(entity)
	return t.save(rows)
}

func (t *table[T]) Delete(id int64) error {
	if id <= 0 {
		return types.ErrInvalidID
	}
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	if !t.b.attached {
		return types.ErrDetached
	}

	rows, err := t.load()
	if err != nil {
		return err
	}
	kept, removed := filterRows(rows, func(r row) bool {
		rid, ok := rowInt(r, 0)
		return ok && rid == id
	})
	if removed == 0 {
		return nil
	}
	return t.save(kept)
}

func (t *table[T]) DeleteWhere(field string, value int64) (int, error) {
	i := record.Index(t.codec, field)
	if i < 0 {
		return 0, fmt.Errorf("%s.%s: %w", t.codec.Table(), field, types.ErrInvalidField)
	}
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	if !t.b.attached {
		return 0, types.ErrDetached
	}

	rows, err := t.load()
	if err != nil {
		return 0, err
	}
	kept, removed := filterRows(rows, func(r row) bool {
		v, ok := rowInt(r, i)
		return ok && v == value
	})
	if removed == 0 {
		return 0, nil
	}
	if err := t.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func (t *table[T]) IDsWhere(field string, value int64) ([]int64, error) {
	i := record.Index(t.codec, field)
	if i < 0 {
		return nil, fmt.Errorf("%s.%s: %w", t.codec.Table(), field, types.ErrInvalidField)
	}
	t.b.mu.RLock()
	defer t.b.mu.RUnlock()
	if !t.b.attached {
		return nil, types.ErrDetached
	}

	rows, err := t.load()
	if err != nil {
		return nil, err
	}
	ids := []int64{}
	for _, r := range rows {
		v, ok := rowInt(r, i)
		if !ok || v != value {
			continue
		}
		if id, ok := rowInt(r, 0); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// filterRows splits rows into those kept and a count of those matching
// drop.
func filterRows(rows []row, drop func(row) bool) ([]row, int) {
	kept := rows[:0:0]
	removed := 0
	for _, r := range rows {
		if drop(r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	return kept, removed
}
