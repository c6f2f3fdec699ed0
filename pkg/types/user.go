package types

import "time"

// User is a registered person. Email is the case-sensitive business key
// used for login and lookup.
type User struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Bio        string     `json:"bio,omitempty"`
	Active     bool       `json:"active"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	DateJoined time.Time  `json:"date_joined"`
}

// Validate checks the fields every backend requires.
func (u User) Validate() error {
	if u.Name == "" || u.Email == "" {
		return ErrInvalidData
	}
	if u.DateJoined.IsZero() {
		return ErrInvalidData
	}
	return nil
}

// RecordLogin sets LastLogin to now and marks the user active.
func (u *User) RecordLogin(now time.Time) {
	ts := Timestamp(now)
	u.LastLogin = &ts
	u.Active = true
}
