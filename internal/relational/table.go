package relational

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/internal/record"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// table implements types.Table for one entity type as one SQL table whose
// columns are the codec's fields. The engine assigns ids.
type table[T any] struct {
	b     *Backend
	codec record.Codec[T]

	selectSQL string
	insertSQL string
	updateSQL string
}

var _ types.Table[types.Task] = (*table[types.Task])(nil)

func newTable[T any](b *Backend, codec record.Codec[T]) *table[T] {
	names := record.Names(codec)
	cols := names[1:]
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	name := codec.Table()
	return &table[T]{
		b:     b,
		codec: codec,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s",
			strings.Join(names, ", "), name),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			name, strings.Join(cols, ", "), placeholders(len(cols)), record.IDField),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
			name, strings.Join(sets, ", "), record.IDField),
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// scan reads the current row into encoded values.
func (t *table[T]) scan(rows *sql.Rows) ([]string, error) {
	fields := t.codec.Fields()
	raw := make([]any, len(fields))
	ptrs := make([]any, len(fields))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	values := make([]string, len(fields))
	for i, f := range fields {
		values[i] = fromColumn(f, raw[i])
	}
	return values, nil
}

func (t *table[T]) Create(entity T) (int64, error) {
	db, d, err := t.b.conn()
	if err != nil {
		return 0, err
	}
	args, err := encodeArgs(t.codec.Fields(), t.codec.Encode(entity), 0)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", t.codec.Table(), types.ErrInvalidData, err)
	}
	var id int64
	if err := db.QueryRow(d.rebind(t.insertSQL), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", t.codec.Table(), classify(err))
	}
	return id, nil
}

func (t *table[T]) FindByID(id int64) (T, bool, error) {
	var zero T
	if id <= 0 {
		return zero, false, types.ErrInvalidID
	}
	db, d, err := t.b.conn()
	if err != nil {
		return zero, false, err
	}
	rows, err := db.Query(d.rebind(t.selectSQL+" WHERE "+record.IDField+" = ?"), id)
	if err != nil {
		return zero, false, fmt.Errorf("querying %s %d: %w", t.codec.Table(), id, classify(err))
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, false, fmt.Errorf("querying %s %d: %w", t.codec.Table(), id, classify(err))
		}
		return zero, false, nil
	}
	values, err := t.scan(rows)
	if err != nil {
		return zero, false, fmt.Errorf("scanning %s %d: %w", t.codec.Table(), id, classify(err))
	}
	entity, err := t.codec.Decode(values)
	if err != nil {
		return zero, false, fmt.Errorf("%s %d: %w", t.codec.Table(), id, err)
	}
	return entity, true, nil
}

func (t *table[T]) FindAll() ([]T, error) {
	db, d, err := t.b.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(d.rebind(t.selectSQL + " ORDER BY " + record.IDField))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.codec.Table(), classify(err))
	}
	defer rows.Close()

	var out []T
	for pos := 1; rows.Next(); pos++ {
		values, err := t.scan(rows)
		if err == nil {
			var entity T
			if entity, err = t.codec.Decode(values); err == nil {
				out = append(out, entity)
				continue
			}
		}
		t.b.log.Warn("skipping malformed row",
			zap.String("table", t.codec.Table()), zap.Int("row", pos), zap.Error(err))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.codec.Table(), classify(err))
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (t *table[T]) Update(entity T) error {
	id := t.codec.ID(entity)
	if id <= 0 {
		return types.ErrInvalidID
	}
	db, d, err := t.b.conn()
	if err != nil {
		return err
	}
	args, err := encodeArgs(t.codec.Fields(), t.codec.Encode(entity), 0)
	if err != nil {
		return fmt.Errorf("%s %d: %w: %w", t.codec.Table(), id, types.ErrInvalidData, err)
	}
	res, err := db.Exec(d.rebind(t.updateSQL), append(args, id)...)
	if err != nil {
		return fmt.Errorf("updating %s %d: %w", t.codec.Table(), id, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s %d: %w", t.codec.Table(), id, classify(err))
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", t.codec.Table(), id, types.ErrNotFound)
	}
	return nil
}

func (t *table[T]) Delete(id int64) error {
	if id <= 0 {
		return types.ErrInvalidID
	}
	_, err := t.deleteBy(record.IDField, id)
	return err
}

func (t *table[T]) DeleteWhere(field string, value int64) (int, error) {
	if err := t.intColumn(field); err != nil {
		return 0, err
	}
	return t.deleteBy(field, value)
}

func (t *table[T]) IDsWhere(field string, value int64) ([]int64, error) {
	if err := t.intColumn(field); err != nil {
		return nil, err
	}
	db, d, err := t.b.conn()
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s",
		record.IDField, t.codec.Table(), field, record.IDField)
	rows, err := db.Query(d.rebind(query), value)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.codec.Table(), classify(err))
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.codec.Table(), classify(err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.codec.Table(), classify(err))
	}
	return ids, nil
}

// intColumn checks that field names an integer column of the table.
func (t *table[T]) intColumn(field string) error {
	i := record.Index(t.codec, field)
	if i < 0 {
		return fmt.Errorf("%s.%s: %w", t.codec.Table(), field, types.ErrInvalidField)
	}
	switch t.codec.Fields()[i].Kind {
	case record.KindID, record.KindOptionalID, record.KindInt:
		return nil
	default:
		return fmt.Errorf("%s.%s is not an integer field: %w", t.codec.Table(), field, types.ErrInvalidField)
	}
}

func (t *table[T]) deleteBy(column string, value int64) (int, error) {
	db, d, err := t.b.conn()
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.codec.Table(), column)
	res, err := db.Exec(d.rebind(query), value)
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", t.codec.Table(), classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", t.codec.Table(), classify(err))
	}
	return int(n), nil
}
