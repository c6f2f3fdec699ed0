package relational

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mesh-intelligence/tracker/internal/record"
)

// toArg converts an encoded field to the driver argument for its column.
func toArg(f record.Field, s string) (any, error) {
	switch f.Kind {
	case record.KindID, record.KindInt:
		return strconv.ParseInt(s, 10, 64)
	case record.KindOptionalID:
		if s == "" {
			return nil, nil
		}
		return strconv.ParseInt(s, 10, 64)
	case record.KindBool:
		return strconv.ParseBool(s)
	case record.KindOptionalTimestamp:
		if s == "" {
			return nil, nil
		}
		return s, nil
	default:
		return s, nil
	}
}

// fromColumn converts a scanned column value back to its encoded form.
// SQLite reports booleans as integers and PostgreSQL reports dates and
// timestamps as time.Time.
func fromColumn(f record.Field, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		if f.Kind == record.KindBool {
			return strconv.FormatBool(x != 0)
		}
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		if f.Kind == record.KindDate {
			return x.Format(record.DateLayout)
		}
		return x.UTC().Format(record.TimestampLayout)
	default:
		return fmt.Sprint(x)
	}
}

// encodeArgs converts a whole encoded record, skipping the fields in skip.
func encodeArgs(fields []record.Field, values []string, skip int) ([]any, error) {
	args := make([]any, 0, len(fields))
	for i, f := range fields {
		if i == skip {
			continue
		}
		arg, err := toArg(f, values[i])
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f.Name, err)
		}
		args = append(args, arg)
	}
	return args, nil
}
