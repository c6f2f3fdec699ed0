package tracker

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// CreateUser registers a user. DateJoined defaults to now. Emails are
// unique, compared case-sensitively.
func (t *Tracker) CreateUser(u types.User) (int64, error) {
	if u.DateJoined.IsZero() {
		u.DateJoined = t.now()
	}
	u.DateJoined = types.Timestamp(u.DateJoined)
	if err := u.Validate(); err != nil {
		return 0, fmt.Errorf("user: %w", err)
	}
	if err := t.checkEmail(u.Email, 0); err != nil {
		return 0, err
	}
	return t.backend.Users().Create(u)
}

// UpdateUser replaces a user's profile.
func (t *Tracker) UpdateUser(u types.User) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("user %d: %w", u.ID, err)
	}
	if err := t.checkEmail(u.Email, u.ID); err != nil {
		return err
	}
	return t.backend.Users().Update(u)
}

// checkEmail rejects an email held by any user other than self.
func (t *Tracker) checkEmail(email string, self int64) error {
	users, err := t.backend.Users().FindAll()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Email == email && u.ID != self {
			return fmt.Errorf("%w: %s", types.ErrDuplicateEmail, email)
		}
	}
	return nil
}

// GetUser returns the user with id.
func (t *Tracker) GetUser(id int64) (types.User, error) {
	return find(t.backend.Users(), types.TableUsers, id)
}

// Users lists every user.
func (t *Tracker) Users() ([]types.User, error) {
	return t.backend.Users().FindAll()
}

// FindUserByEmail returns the user registered under email.
func (t *Tracker) FindUserByEmail(email string) (types.User, error) {
	users, err := t.backend.Users().FindAll()
	if err != nil {
		return types.User{}, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, fmt.Errorf("user %s: %w", email, types.ErrNotFound)
}

// RecordLogin refreshes the last-login time of the user registered under
// email and returns the updated user.
func (t *Tracker) RecordLogin(email string) (types.User, error) {
	u, err := t.FindUserByEmail(email)
	if err != nil {
		return types.User{}, err
	}
	u.RecordLogin(t.now())
	if err := t.backend.Users().Update(u); err != nil {
		return types.User{}, err
	}
	t.log.Debug("recorded login", zap.Int64("user", u.ID))
	return u, nil
}
