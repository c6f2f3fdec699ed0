package relational

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/internal/record"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// linkTable implements types.LinkTable as a join table keyed by the pair.
// Its foreign keys reject pairs naming a missing project or user.
type linkTable struct {
	b *Backend
}

var _ types.LinkTable = (*linkTable)(nil)

func (l *linkTable) Link(projectID, userID int64) error {
	if projectID <= 0 || userID <= 0 {
		return types.ErrInvalidID
	}
	db, d, err := l.b.conn()
	if err != nil {
		return err
	}
	query := fmt.Sprintf("INSERT INTO %s (project_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		record.Memberships.Table())
	if _, err := db.Exec(d.rebind(query), projectID, userID); err != nil {
		return fmt.Errorf("linking project %d and user %d: %w", projectID, userID, classify(err))
	}
	return nil
}

func (l *linkTable) Unlink(projectID, userID int64) error {
	_, err := l.remove("project_id = ? AND user_id = ?", projectID, userID)
	return err
}

func (l *linkTable) UnlinkProject(projectID int64) (int, error) {
	return l.remove("project_id = ?", projectID)
}

func (l *linkTable) UnlinkUser(userID int64) (int, error) {
	return l.remove("user_id = ?", userID)
}

func (l *linkTable) remove(where string, args ...any) (int, error) {
	db, d, err := l.b.conn()
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", record.Memberships.Table(), where)
	res, err := db.Exec(d.rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("unlinking: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("unlinking: %w", classify(err))
	}
	return int(n), nil
}

// All returns every pair ordered by project then user.
func (l *linkTable) All() ([]types.Membership, error) {
	db, d, err := l.b.conn()
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT project_id, user_id FROM %s ORDER BY project_id, user_id",
		record.Memberships.Table())
	rows, err := db.Query(d.rebind(query))
	if err != nil {
		return nil, fmt.Errorf("querying memberships: %w", classify(err))
	}
	defer rows.Close()

	out := []types.Membership{}
	for pos := 1; rows.Next(); pos++ {
		var m types.Membership
		if err := rows.Scan(&m.ProjectID, &m.UserID); err != nil {
			l.b.log.Warn("skipping malformed membership", zap.Int("row", pos), zap.Error(err))
			continue
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying memberships: %w", classify(err))
	}
	return out, nil
}
