package tracker

import (
	"errors"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// AddMember links a user to a project. Both must exist. Adding an existing
// member is a no-op.
func (t *Tracker) AddMember(projectID, userID int64) error {
	ok, err := exists(t.backend.Projects(), projectID)
	if err != nil {
		return err
	}
	if !ok {
		return t.integrity("membership: project %d does not exist", projectID)
	}
	if ok, err = exists(t.backend.Users(), userID); err != nil {
		return err
	}
	if !ok {
		return t.integrity("membership: user %d does not exist", userID)
	}
	return t.backend.Memberships().Link(projectID, userID)
}

// RemoveMember unlinks a user from a project. Removing a non-member is a
// no-op.
func (t *Tracker) RemoveMember(projectID, userID int64) error {
	return t.backend.Memberships().Unlink(projectID, userID)
}

// IsMember reports whether the user is linked to the project.
func (t *Tracker) IsMember(projectID, userID int64) (bool, error) {
	pairs, err := t.backend.Memberships().All()
	if err != nil {
		return false, err
	}
	for _, m := range pairs {
		if m.ProjectID == projectID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// UsersOf returns the members of a project. Links to users that no longer
// resolve are skipped.
func (t *Tracker) UsersOf(projectID int64) ([]types.User, error) {
	pairs, err := t.backend.Memberships().All()
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, m := range pairs {
		if m.ProjectID == projectID {
			ids = append(ids, m.UserID)
		}
	}
	return linked(t, t.backend.Users(), types.TableUsers, ids)
}

// ProjectsOf returns the projects a user belongs to. Links to projects that
// no longer resolve are skipped.
func (t *Tracker) ProjectsOf(userID int64) ([]types.Project, error) {
	pairs, err := t.backend.Memberships().All()
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, m := range pairs {
		if m.UserID == userID {
			ids = append(ids, m.ProjectID)
		}
	}
	return linked(t, t.backend.Projects(), types.TableProjects, ids)
}

// linked resolves ids through tbl, skipping dangling and unreadable ones.
func linked[T any](t *Tracker, tbl types.Table[T], table string, ids []int64) ([]T, error) {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		v, ok, err := tbl.FindByID(id)
		if errors.Is(err, types.ErrMalformedRecord) {
			t.log.Warn("skipping unreadable member", zap.String("table", table), zap.Int64("id", id), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		if !ok {
			t.log.Debug("skipping dangling link", zap.String("table", table), zap.Int64("id", id))
			continue
		}
		out = append(out, v)
	}
	return out, nil
}
