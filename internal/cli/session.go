package cli

import (
	"errors"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// errNoSession is returned by commands that act on behalf of a user when
// --as was not given.
var errNoSession = errors.New("this command needs --as <email>")

// Session identifies one CLI invocation and the user it acts as. It is
// built once before the command runs and passed to handlers explicitly.
type Session struct {
	ID   string
	User *types.User
}

// RequireUser returns the session user or errNoSession.
func (s Session) RequireUser() (types.User, error) {
	if s.User == nil {
		return types.User{}, errNoSession
	}
	return *s.User, nil
}
