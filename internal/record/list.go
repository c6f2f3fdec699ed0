package record

import (
	"errors"
	"strings"
)

// ListSeparator joins list items inside a single field.
const ListSeparator = ';'

const listEscape = '\\'

var errBadEscape = errors.New("invalid escape in list")

// JoinList encodes items into one field. Separator and escape characters
// inside an item are escaped so every item round-trips. A nil or empty
// list encodes as the empty string.
func JoinList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte(ListSeparator)
		}
		for _, r := range item {
			if r == ListSeparator || r == listEscape {
				b.WriteByte(listEscape)
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SplitList decodes a field produced by JoinList. The empty string decodes
// to a nil list.
func SplitList(field string) ([]string, error) {
	if field == "" {
		return nil, nil
	}
	var (
		items   []string
		cur     strings.Builder
		escaped bool
	)
	for _, r := range field {
		switch {
		case escaped:
			if r != ListSeparator && r != listEscape {
				return nil, errBadEscape
			}
			cur.WriteRune(r)
			escaped = false
		case r == listEscape:
			escaped = true
		case r == ListSeparator:
			items = append(items, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		return nil, errBadEscape
	}
	return append(items, cur.String()), nil
}
