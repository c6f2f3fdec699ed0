package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// fieldReader decodes positional values, keeping the first error.
type fieldReader struct {
	schema Schema
	values []string
	err    error
}

func newFieldReader(s Schema, values []string) (*fieldReader, error) {
	if want := len(s.Fields()); len(values) != want {
		return nil, fmt.Errorf("%w: %s: got %d fields, want %d",
			types.ErrMalformedRecord, s.Table(), len(values), want)
	}
	return &fieldReader{schema: s, values: values}, nil
}

func (r *fieldReader) fail(i int, reason string) {
	if r.err != nil {
		return
	}
	r.err = fmt.Errorf("%w: %s.%s: %s %q",
		types.ErrMalformedRecord, r.schema.Table(), r.schema.Fields()[i].Name, reason, r.values[i])
}

func (r *fieldReader) id(i int) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(r.values[i]), 10, 64)
	if err != nil || n <= 0 {
		r.fail(i, "invalid id")
		return 0
	}
	return n
}

func (r *fieldReader) optionalID(i int) int64 {
	if strings.TrimSpace(r.values[i]) == "" {
		return 0
	}
	return r.id(i)
}

func (r *fieldReader) integer(i int) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.values[i]))
	if err != nil {
		r.fail(i, "invalid integer")
		return 0
	}
	return n
}

func (r *fieldReader) text(i int) string {
	return r.values[i]
}

func (r *fieldReader) boolean(i int) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(r.values[i]))
	if err != nil {
		r.fail(i, "invalid bool")
		return false
	}
	return b
}

func (r *fieldReader) date(i int) time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(r.values[i]))
	if err != nil {
		r.fail(i, "invalid date")
		return time.Time{}
	}
	return t
}

func (r *fieldReader) timestamp(i int) time.Time {
	t, err := time.Parse(TimestampLayout, strings.TrimSpace(r.values[i]))
	if err != nil {
		r.fail(i, "invalid timestamp")
		return time.Time{}
	}
	return types.Timestamp(t)
}

func (r *fieldReader) optionalTimestamp(i int) *time.Time {
	if strings.TrimSpace(r.values[i]) == "" {
		return nil
	}
	t := r.timestamp(i)
	if r.err != nil {
		return nil
	}
	return &t
}

func (r *fieldReader) status(i int) types.TaskStatus {
	s, err := types.ParseTaskStatus(strings.TrimSpace(r.values[i]))
	if err != nil {
		r.fail(i, "unknown status")
		return ""
	}
	return s
}

func (r *fieldReader) list(i int) []string {
	items, err := SplitList(r.values[i])
	if err != nil {
		r.fail(i, err.Error())
		return nil
	}
	return items
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatOptionalID(id int64) string {
	if id <= 0 {
		return ""
	}
	return formatID(id)
}

// FormatDate renders a calendar date in the stored layout.
func FormatDate(t time.Time) string {
	return types.Date(t).Format(DateLayout)
}

// FormatTimestamp renders a timestamp in the stored layout.
func FormatTimestamp(t time.Time) string {
	return types.Timestamp(t).Format(TimestampLayout)
}

func formatOptionalTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatTimestamp(*t)
}
