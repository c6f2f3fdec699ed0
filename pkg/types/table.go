package types

import "errors"

// Table provides uniform CRUD operations for a single entity type keyed by
// a positive integer id. Every backend implements it once per medium.
type Table[T any] interface {
	// Create assigns the next id, persists the record and returns the id.
	// The value passed in is not modified.
	Create(entity T) (int64, error)

	// FindByID returns the record with the given id. The boolean is false
	// when no record has that id; absence is not an error.
	FindByID(id int64) (T, bool, error)

	// FindAll returns every decodable record in persisted order.
	// Malformed records are skipped.
	FindAll() ([]T, error)

	// Update replaces the record with the same id.
	// Returns ErrNotFound if no record has that id.
	Update(entity T) error

	// Delete removes the record with the given id. Deleting an absent id
	// is a no-op.
	Delete(id int64) error

	// DeleteWhere removes every record whose integer field equals value and
	// returns the number of records removed.
	DeleteWhere(field string, value int64) (int, error)

	// IDsWhere returns, in persisted order, the ids of every stored record
	// whose integer field equals value, including records that otherwise
	// fail to decode.
	IDsWhere(field string, value int64) ([]int64, error)
}

// LinkTable stores project/user membership pairs with set semantics,
// independently of either entity's own table.
type LinkTable interface {
	// Link adds the pair. Adding an existing pair is a no-op.
	Link(projectID, userID int64) error

	// Unlink removes the pair. Removing an absent pair is a no-op.
	Unlink(projectID, userID int64) error

	// All returns every pair in persisted order.
	All() ([]Membership, error)

	// UnlinkProject removes every pair for the project.
	UnlinkProject(projectID int64) (int, error)

	// UnlinkUser removes every pair for the user.
	UnlinkUser(userID int64) (int, error)
}

// Storage error kinds. Backends wrap these with context; callers test
// with errors.Is.
var (
	ErrNotFound           = errors.New("record not found")
	ErrMalformedRecord    = errors.New("malformed record")
	ErrIntegrityViolation = errors.New("integrity violation")
	ErrStorageIO          = errors.New("storage I/O failure")
)

// Validation errors.
var (
	ErrInvalidID      = errors.New("invalid record ID")
	ErrInvalidData    = errors.New("invalid record data")
	ErrInvalidStatus  = errors.New("invalid task status")
	ErrInvalidField   = errors.New("unknown field")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrAccessDenied   = errors.New("access denied")
)
