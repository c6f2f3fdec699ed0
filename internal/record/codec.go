// Package record converts tracker entities to and from flat field lists.
// The field list is the unit every medium stores: one CSV row, one XML
// element, or one relational row. Codecs are pure; they do no I/O.
package record

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Stored formats.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = time.RFC3339
)

// IDField is the name of the primary key field. It is always the first
// field of an entity codec.
const IDField = "id"

// Kind is the storage type of a field.
type Kind int

// Field kinds.
const (
	KindID                Kind = iota // positive integer, required
	KindOptionalID                    // positive integer or empty
	KindInt                           // any integer
	KindText                          // free text, empty allowed
	KindBool                          // true or false
	KindDate                          // calendar date
	KindTimestamp                     // date and time, required
	KindOptionalTimestamp             // date and time or empty
	KindStatus                        // task status token
	KindList                          // delimited list of strings
)

func (k Kind) String() string {
	switch k {
	case KindID:
		return "id"
	case KindOptionalID:
		return "optional id"
	case KindInt:
		return "int"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	case KindOptionalTimestamp:
		return "optional timestamp"
	case KindStatus:
		return "status"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field names one position of a record and its storage kind.
type Field struct {
	Name string
	Kind Kind
}

// Schema describes how a table's records are laid out.
type Schema interface {
	// Table is the table (and file base) name.
	Table() string
	// Element is the name of one record's XML element.
	Element() string
	// Fields lists the record fields in storage order.
	Fields() []Field
}

// Codec converts one entity type to and from its field list.
type Codec[T any] interface {
	Schema
	Encode(entity T) []string
	// Decode returns an error wrapping types.ErrMalformedRecord when the
	// field list cannot be converted.
	Decode(values []string) (T, error)
	ID(entity T) int64
	WithID(entity T, id int64) T
}

// Names returns the field names of a schema in order.
func Names(s Schema) []string {
	fields := s.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of the named field, or -1.
func Index(s Schema, name string) int {
	for i, f := range s.Fields() {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Entity codecs.
var (
	Users          Codec[types.User]          = userCodec{}
	Projects       Codec[types.Project]       = projectCodec{}
	Sprints        Codec[types.Sprint]        = sprintCodec{}
	Tasks          Codec[types.Task]          = taskCodec{}
	Retrospectives Codec[types.Retrospective] = retrospectiveCodec{}
)

// Memberships is the codec for project/user pairs. Pairs have no id of
// their own.
var Memberships = membershipCodec{}
