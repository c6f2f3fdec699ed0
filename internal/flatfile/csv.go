package flatfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/mesh-intelligence/tracker/internal/record"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// csvMedium stores one header row followed by one comma-delimited row per
// record.
type csvMedium struct{}

func (csvMedium) ext() string { return ".csv" }

func (csvMedium) read(r io.Reader, s record.Schema) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", types.ErrMalformedRecord, err)
	}

	var rows []row
	for pos := 1; ; pos++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			rows = append(rows, row{pos: pos, err: fmt.Errorf("%w: %w", types.ErrMalformedRecord, err)})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrStorageIO, err)
		}
		if len(rec) != len(header) {
			rows = append(rows, row{pos: pos, err: fmt.Errorf("%w: row has %d fields, header has %d",
				types.ErrMalformedRecord, len(rec), len(header))})
			continue
		}
		byName := make(map[string]string, len(header))
		for i, name := range header {
			byName[name] = rec[i]
		}
		rows = append(rows, row{pos: pos, values: orderValues(s, byName)})
	}
	return rows, nil
}

func (csvMedium) write(w io.Writer, s record.Schema, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(record.Names(s)); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
