// Package types defines the tracker entities, the Table, LinkTable and
// Backend interfaces, and the standard errors shared by every storage
// backend.
package types
