package relational

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// dialect captures what differs between the supported SQL engines.
type dialect struct {
	name   string // migration directory
	driver string // database/sql driver name
	goose  string // goose dialect name
	// dollar selects $1, $2, ... placeholders instead of ?.
	dollar bool
}

var (
	sqliteDialect   = dialect{name: "sqlite", driver: "sqlite", goose: "sqlite3"}
	postgresDialect = dialect{name: "postgres", driver: "pgx", goose: "postgres", dollar: true}
)

// rebind rewrites ? placeholders for the dialect. Queries built here never
// contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.dollar {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// PostgreSQL SQLSTATEs reported for constraint failures.
var postgresConstraintCodes = map[string]bool{
	"23502": true, // not_null_violation
	"23503": true, // foreign_key_violation
	"23505": true, // unique_violation
	"23514": true, // check_violation
}

// isConstraint reports whether err is an engine constraint failure.
func isConstraint(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		// The low byte of an extended result code is the primary code.
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return postgresConstraintCodes[pe.Code]
	}
	return false
}

// classify wraps a driver error with the storage error kind it represents.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isConstraint(err) {
		return fmt.Errorf("%w: %w", types.ErrIntegrityViolation, err)
	}
	return fmt.Errorf("%w: %w", types.ErrStorageIO, err)
}
