package flatfile

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/internal/record"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// linkTable implements types.LinkTable as its own flat collection of
// (project_id, user_id) pairs.
type linkTable struct {
	b *Backend
}

var _ types.LinkTable = (*linkTable)(nil)

func (l *linkTable) path() string {
	return filepath.Join(l.b.dir, record.Memberships.Table()+l.b.medium.ext())
}

func (l *linkTable) load() ([]row, error) {
	return readFile(l.b.medium, l.path(), record.Memberships)
}

func (l *linkTable) save(rows []row) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if r.err == nil {
			out = append(out, r.values)
		}
	}
	return writeFile(l.b.medium, l.path(), record.Memberships, out)
}

func matchPair(projectID, userID int64) func(row) bool {
	return func(r row) bool {
		p, okP := rowInt(r, 0)
		u, okU := rowInt(r, 1)
		return okP && okU && p == projectID && u == userID
	}
}

func (l *linkTable) Link(projectID, userID int64) error {
	if projectID <= 0 || userID <= 0 {
		return types.ErrInvalidID
	}
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	if !l.b.attached {
		return types.ErrDetached
	}

	rows, err := l.load()
	if err != nil {
		return err
	}
	match := matchPair(projectID, userID)
	for _, r := range rows {
		if match(r) {
			return nil
		}
	}
	m := types.Membership{ProjectID: projectID, UserID: userID}
	rows = append(rows, row{pos: len(rows) + 1, values: record.Memberships.Encode(m)})
	return l.save(rows)
}

func (l *linkTable) Unlink(projectID, userID int64) error {
	_, err := l.remove(matchPair(projectID, userID))
	return err
}

func (l *linkTable) UnlinkProject(projectID int64) (int, error) {
	return l.remove(func(r row) bool {
		p, ok := rowInt(r, 0)
		return ok && p == projectID
	})
}

func (l *linkTable) UnlinkUser(userID int64) (int, error) {
	return l.remove(func(r row) bool {
		u, ok := rowInt(r, 1)
		return ok && u == userID
	})
}

func (l *linkTable) remove(drop func(row) bool) (int, error) {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	if !l.b.attached {
		return 0, types.ErrDetached
	}

	rows, err := l.load()
	if err != nil {
		return 0, err
	}
	kept, removed := filterRows(rows, drop)
	if removed == 0 {
		return 0, nil
	}
	if err := l.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func (l *linkTable) All() ([]types.Membership, error) {
	l.b.mu.RLock()
	defer l.b.mu.RUnlock()
	if !l.b.attached {
		return nil, types.ErrDetached
	}

	rows, err := l.load()
	if err != nil {
		return nil, err
	}
	out := make([]types.Membership, 0, len(rows))
	for _, r := range rows {
		err := r.err
		if err == nil {
			var m types.Membership
			if m, err = record.Memberships.Decode(r.values); err == nil {
				out = append(out, m)
				continue
			}
		}
		l.b.log.Warn("skipping malformed membership",
			zap.Int("row", r.pos), zap.Error(err))
	}
	return out, nil
}
