package tracker

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

var backends = []string{types.BackendCSV, types.BackendXML, types.BackendSQLite}

var (
	clock  = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	jan1   = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan14  = time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)
	jan15  = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	jan28  = time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC)
	fixedT = func() time.Time { return clock }
)

// open attaches a tracker on a fresh data directory.
func open(t *testing.T, backend string) *Tracker {
	t.Helper()
	return openIn(t, backend, t.TempDir())
}

func openIn(t *testing.T, backend, dir string) *Tracker {
	t.Helper()
	tr, err := Open(types.Config{Backend: backend, DataDir: dir}, WithClock(fixedT))
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	return tr
}

// corrupt rewrites old to new in the stored file of a flat-file table.
func corrupt(t *testing.T, dir, backend, table, old, new string) {
	t.Helper()
	path := filepath.Join(dir, table+"."+backend)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), old)
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(string(data), old, new, 1)), 0o644))
}

func forEachBackend(t *testing.T, fn func(t *testing.T, tr *Tracker)) {
	for _, name := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, open(t, name))
		})
	}
}

// fixture is a user who created project Alpha holding one sprint.
type fixture struct {
	user, project, sprint int64
}

func seed(t *testing.T, tr *Tracker) fixture {
	t.Helper()
	var f fixture
	var err error
	f.user, err = tr.CreateUser(types.User{Name: "Ada", Email: "ada@example.com", Active: true})
	require.NoError(t, err)
	f.project, err = tr.CreateProject(types.Project{Name: "Alpha"}, f.user)
	require.NoError(t, err)
	f.sprint, err = tr.CreateSprint(types.Sprint{StartDate: jan1, EndDate: jan14, ProjectID: f.project})
	require.NoError(t, err)
	return f
}

func TestOpenValidatesConfig(t *testing.T) {
	_, err := Open(types.Config{Backend: "mongo"})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
	_, err = Open(types.Config{Backend: types.BackendPostgres})
	assert.ErrorIs(t, err, types.ErrDSNRequired)
}

func TestTaskLifecycleAndProjectCascade(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		u, err := tr.CreateUser(types.User{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)
		pid, err := tr.CreateProject(types.Project{Name: "Alpha"}, u)
		require.NoError(t, err)
		sid, err := tr.CreateSprint(types.Sprint{StartDate: jan1, EndDate: jan14, ProjectID: pid})
		require.NoError(t, err)
		tid, err := tr.CreateTask(types.Task{Title: "Fix bug", Status: types.StatusTodo, Priority: 1, SprintID: sid})
		require.NoError(t, err)

		view, err := tr.GetTask(tid)
		require.NoError(t, err)
		assert.Equal(t, types.StatusTodo, view.Status)
		assert.Equal(t, types.RefAbsent, view.Assignee.State)
		sprint, ok := view.Sprint.Get()
		require.True(t, ok)
		assert.Equal(t, jan1, sprint.StartDate)

		require.NoError(t, tr.SetTaskStatus(tid, types.StatusDone))
		view, err = tr.GetTask(tid)
		require.NoError(t, err)
		assert.Equal(t, types.StatusDone, view.Status)

		require.NoError(t, tr.DeleteProject(pid))

		_, ok, err = tr.Backend().Sprints().FindByID(sid)
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = tr.Backend().Tasks().FindByID(tid)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCascadeCompleteness(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		f := seed(t, tr)
		other, err := tr.CreateProject(types.Project{Name: "Beta"}, f.user)
		require.NoError(t, err)
		otherSprint, err := tr.CreateSprint(types.Sprint{StartDate: jan1, EndDate: jan14, ProjectID: other})
		require.NoError(t, err)

		second, err := tr.CreateSprint(types.Sprint{StartDate: jan15, EndDate: jan28, ProjectID: f.project})
		require.NoError(t, err)
		var tasks []int64
		for _, sid := range []int64{f.sprint, f.sprint, second, otherSprint} {
			id, err := tr.CreateTask(types.Task{Title: "t", SprintID: sid})
			require.NoError(t, err)
			tasks = append(tasks, id)
		}
		retro, err := tr.SaveRetrospective(types.Retrospective{SprintID: f.sprint, Summary: "fine"})
		require.NoError(t, err)

		require.NoError(t, tr.DeleteProject(f.project))

		b := tr.Backend()
		for _, sid := range []int64{f.sprint, second} {
			_, ok, err := b.Sprints().FindByID(sid)
			require.NoError(t, err)
			assert.False(t, ok, "sprint %d", sid)
		}
		for _, tid := range tasks[:3] {
			_, ok, err := b.Tasks().FindByID(tid)
			require.NoError(t, err)
			assert.False(t, ok, "task %d", tid)
		}
		_, ok, err := b.Retrospectives().FindByID(retro)
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = b.Projects().FindByID(f.project)
		require.NoError(t, err)
		assert.False(t, ok)

		pairs, err := b.Memberships().All()
		require.NoError(t, err)
		assert.Equal(t, []types.Membership{{ProjectID: other, UserID: f.user}}, pairs)

		left, err := tr.TasksOf(otherSprint)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, tasks[3], left[0].ID)
	})
}

func TestDeleteSprintCascade(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		f := seed(t, tr)
		tid, err := tr.CreateTask(types.Task{Title: "t", SprintID: f.sprint})
		require.NoError(t, err)
		rid, err := tr.SaveRetrospective(types.Retrospective{SprintID: f.sprint})
		require.NoError(t, err)

		require.NoError(t, tr.DeleteSprint(f.sprint))

		_, err = tr.GetTask(tid)
		assert.ErrorIs(t, err, types.ErrNotFound)
		_, err = tr.GetRetrospective(rid)
		assert.ErrorIs(t, err, types.ErrNotFound)
		_, err = tr.GetProject(f.project)
		assert.NoError(t, err, "the parent project is untouched")
	})
}

func TestIdempotentMembership(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		f := seed(t, tr)
		bob, err := tr.CreateUser(types.User{Name: "Bob", Email: "bob@example.com"})
		require.NoError(t, err)

		require.NoError(t, tr.AddMember(f.project, bob))
		require.NoError(t, tr.AddMember(f.project, bob))

		users, err := tr.UsersOf(f.project)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{f.user, bob}, userIDs(users))

		ok, err := tr.IsMember(f.project, bob)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, tr.RemoveMember(f.project, bob))
		require.NoError(t, tr.RemoveMember(f.project, bob), "removing a non-member is a no-op")

		users, err = tr.UsersOf(f.project)
		require.NoError(t, err)
		assert.Equal(t, []int64{f.user}, userIDs(users))

		projects, err := tr.ProjectsOf(f.user)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "Alpha", projects[0].Name)
	})
}

func TestMembershipRequiresBothEnds(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		f := seed(t, tr)
		assert.ErrorIs(t, tr.AddMember(f.project, 99), types.ErrIntegrityViolation)
		assert.ErrorIs(t, tr.AddMember(99, f.user), types.ErrIntegrityViolation)
	})
}

func TestDanglingLinksAreSkipped(t *testing.T) {
	// The relational join table cannot hold dangling pairs.
	for _, name := range []string{types.BackendCSV, types.BackendXML} {
		t.Run(name, func(t *testing.T) {
			tr := open(t, name)
			f := seed(t, tr)
			require.NoError(t, tr.Backend().Memberships().Link(f.project, 42))
			require.NoError(t, tr.Backend().Memberships().Link(42, f.user))

			users, err := tr.UsersOf(f.project)
			require.NoError(t, err)
			assert.Equal(t, []int64{f.user}, userIDs(users))

			projects, err := tr.ProjectsOf(f.user)
			require.NoError(t, err)
			assert.Len(t, projects, 1)
		})
	}
}

func TestDeleteUserUnassignsTasks(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		f := seed(t, tr)
		bob, err := tr.CreateUser(types.User{Name: "Bob", Email: "bob@example.com"})
		require.NoError(t, err)
		require.NoError(t, tr.AddMember(f.project, bob))
		tid, err := tr.CreateTask(types.Task{Title: "t", SprintID: f.sprint, AssignedUserID: bob})
		require.NoError(t, err)
		kept, err := tr.CreateTask(types.Task{Title: "u", SprintID: f.sprint, AssignedUserID: f.user})
		require.NoError(t, err)

		view, err := tr.GetTask(tid)
		require.NoError(t, err)
		assignee, ok := view.Assignee.Get()
		require.True(t, ok)
		assert.Equal(t, "Bob", assignee.Name)

		require.NoError(t, tr.DeleteUser(bob))

		view, err = tr.GetTask(tid)
		require.NoError(t, err)
		assert.Zero(t, view.AssignedUserID)
		assert.Equal(t, types.RefAbsent, view.Assignee.State)

		mine, err := tr.TasksAssignedTo(bob)
		require.NoError(t, err)
		assert.Empty(t, mine)

		// The task stays editable once its assignee is gone.
		require.NoError(t, tr.SetTaskStatus(tid, types.StatusDone))
		view.Title = "renamed"
		require.NoError(t, tr.UpdateTask(view.Task))

		other, err := tr.GetTask(kept)
		require.NoError(t, err)
		assert.Equal(t, f.user, other.AssignedUserID)

		member, err := tr.IsMember(f.project, bob)
		require.NoError(t, err)
		assert.False(t, member)
	})
}

func TestDeleteProjectCascadesThroughUndecodableSprint(t *testing.T) {
	for _, name := range []string{types.BackendCSV, types.BackendXML} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tr := openIn(t, name, dir)
			f := seed(t, tr)
			broken, err := tr.CreateSprint(types.Sprint{StartDate: jan15, EndDate: jan28, ProjectID: f.project})
			require.NoError(t, err)
			tid, err := tr.CreateTask(types.Task{Title: "t", SprintID: broken})
			require.NoError(t, err)
			rid, err := tr.SaveRetrospective(types.Retrospective{SprintID: broken, Summary: "s"})
			require.NoError(t, err)
			corrupt(t, dir, name, types.TableSprints, "2024-01-28", "someday")

			sprints, err := tr.SprintsOf(f.project)
			require.NoError(t, err)
			require.Len(t, sprints, 1, "the damaged sprint no longer lists")

			require.NoError(t, tr.DeleteProject(f.project))

			b := tr.Backend()
			_, ok, err := b.Tasks().FindByID(tid)
			require.NoError(t, err)
			assert.False(t, ok)
			_, ok, err = b.Retrospectives().FindByID(rid)
			require.NoError(t, err)
			assert.False(t, ok)
			_, ok, err = b.Sprints().FindByID(broken)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestOrphanedSprintProjectIsMissing(t *testing.T) {
	for _, name := range []string{types.BackendCSV, types.BackendXML} {
		t.Run(name, func(t *testing.T) {
			tr := open(t, name)
			f := seed(t, tr)
			// Deleting only the project record leaves the sprint orphaned.
			require.NoError(t, tr.Backend().Projects().Delete(f.project))

			view, err := tr.GetSprint(f.sprint)
			require.NoError(t, err)
			assert.Equal(t, types.RefMissing, view.Project.State)
			assert.Equal(t, f.project, view.Project.ID)

			_, err = tr.AccessibleSprint(f.user, f.sprint)
			assert.ErrorIs(t, err, types.ErrNotFound)
		})
	}
}

func TestAccessibleSprint(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		f := seed(t, tr)
		eve, err := tr.CreateUser(types.User{Name: "Eve", Email: "eve@example.com"})
		require.NoError(t, err)

		view, err := tr.AccessibleSprint(f.user, f.sprint)
		require.NoError(t, err)
		project, ok := view.Project.Get()
		require.True(t, ok)
		assert.Equal(t, "Alpha", project.Name)

		_, err = tr.AccessibleSprint(eve, f.sprint)
		assert.ErrorIs(t, err, types.ErrAccessDenied)

		_, err = tr.AccessibleSprint(f.user, 99)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestIntegrityChecks(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		f := seed(t, tr)

		_, err := tr.CreateProject(types.Project{Name: "Orphan"}, 99)
		assert.ErrorIs(t, err, types.ErrIntegrityViolation)

		_, err = tr.CreateSprint(types.Sprint{StartDate: jan1, EndDate: jan14, ProjectID: 99})
		assert.ErrorIs(t, err, types.ErrIntegrityViolation)
		_, err = tr.CreateSprint(types.Sprint{StartDate: jan14, EndDate: jan1, ProjectID: f.project})
		assert.ErrorIs(t, err, types.ErrInvalidData)

		_, err = tr.CreateTask(types.Task{Title: "t", SprintID: 99})
		assert.ErrorIs(t, err, types.ErrIntegrityViolation)
		_, err = tr.CreateTask(types.Task{Title: "t", SprintID: f.sprint, AssignedUserID: 99})
		assert.ErrorIs(t, err, types.ErrIntegrityViolation)
		_, err = tr.CreateTask(types.Task{Title: "t", SprintID: f.sprint, Status: "todo"})
		assert.ErrorIs(t, err, types.ErrInvalidStatus)
		_, err = tr.CreateTask(types.Task{SprintID: f.sprint})
		assert.ErrorIs(t, err, types.ErrInvalidData)

		_, err = tr.SaveRetrospective(types.Retrospective{SprintID: 99})
		assert.ErrorIs(t, err, types.ErrIntegrityViolation)

		tid, err := tr.CreateTask(types.Task{Title: "t", SprintID: f.sprint})
		require.NoError(t, err)
		assert.ErrorIs(t, tr.AssignTask(tid, 99), types.ErrIntegrityViolation)
		assert.ErrorIs(t, tr.SetTaskStatus(tid, "DOING"), types.ErrInvalidStatus)
		assert.ErrorIs(t, tr.SetTaskStatus(99, types.StatusDone), types.ErrNotFound)

		require.NoError(t, tr.AssignTask(tid, f.user))
		mine, err := tr.TasksAssignedTo(f.user)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, tid, mine[0].ID)

		require.NoError(t, tr.AssignTask(tid, 0))
		mine, err = tr.TasksAssignedTo(f.user)
		require.NoError(t, err)
		assert.Empty(t, mine)
	})
}

func TestUsers(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		id, err := tr.CreateUser(types.User{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)

		u, err := tr.GetUser(id)
		require.NoError(t, err)
		assert.Equal(t, clock, u.DateJoined)
		assert.Nil(t, u.LastLogin)

		_, err = tr.CreateUser(types.User{Name: "Imposter", Email: "ada@example.com"})
		assert.ErrorIs(t, err, types.ErrDuplicateEmail)
		_, err = tr.CreateUser(types.User{Name: "Case", Email: "ADA@example.com"})
		assert.NoError(t, err, "emails compare case-sensitively")
		_, err = tr.CreateUser(types.User{Name: "No email"})
		assert.ErrorIs(t, err, types.ErrInvalidData)

		u.Bio = "mathematician"
		require.NoError(t, tr.UpdateUser(u))
		u.Email = "ADA@example.com"
		assert.ErrorIs(t, tr.UpdateUser(u), types.ErrDuplicateEmail)

		logged, err := tr.RecordLogin("ada@example.com")
		require.NoError(t, err)
		require.NotNil(t, logged.LastLogin)
		assert.Equal(t, clock, *logged.LastLogin)

		got, err := tr.FindUserByEmail("ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "mathematician", got.Bio)
		assert.Equal(t, logged.LastLogin, got.LastLogin)

		_, err = tr.RecordLogin("nobody@example.com")
		assert.ErrorIs(t, err, types.ErrNotFound)
		_, err = tr.GetUser(99)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestSaveRetrospectiveUpserts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		f := seed(t, tr)
		id, err := tr.SaveRetrospective(types.Retrospective{
			SprintID:     f.sprint,
			Summary:      "first",
			Improvements: []string{"estimates"},
		})
		require.NoError(t, err)

		again, err := tr.SaveRetrospective(types.Retrospective{
			SprintID:  f.sprint,
			Summary:   "second",
			Positives: []string{"shipped; on time"},
		})
		require.NoError(t, err)
		assert.Equal(t, id, again)

		view, err := tr.GetRetrospective(id)
		require.NoError(t, err)
		assert.Equal(t, "second", view.Summary)
		assert.Nil(t, view.Improvements)
		assert.Equal(t, []string{"shipped; on time"}, view.Positives)
		assert.True(t, view.Sprint.Present())

		all, err := tr.Backend().Retrospectives().FindAll()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestSaveRetrospectiveReplacesUnreadableOne(t *testing.T) {
	for _, name := range []string{types.BackendCSV, types.BackendXML} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tr := openIn(t, name, dir)
			f := seed(t, tr)
			first, err := tr.SaveRetrospective(types.Retrospective{
				SprintID:     f.sprint,
				Improvements: []string{"estimates"},
			})
			require.NoError(t, err)
			corrupt(t, dir, name, types.TableRetrospectives, "estimates", "estim\\ates")

			_, _, err = tr.RetrospectiveOf(f.sprint)
			assert.ErrorIs(t, err, types.ErrMalformedRecord)

			id, err := tr.SaveRetrospective(types.Retrospective{SprintID: f.sprint, Summary: "redone"})
			require.NoError(t, err)
			assert.NotEqual(t, first, id)

			all, err := tr.Backend().Retrospectives().FindAll()
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, "redone", all[0].Summary)

			stored, err := tr.Backend().Retrospectives().IDsWhere("sprint_id", f.sprint)
			require.NoError(t, err)
			assert.Equal(t, []int64{id}, stored)

			r, ok, err := tr.RetrospectiveOf(f.sprint)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, id, r.ID)
		})
	}
}

func TestIDsAreNotReusedAfterDelete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		f := seed(t, tr)
		first, err := tr.CreateTask(types.Task{Title: "a", SprintID: f.sprint})
		require.NoError(t, err)
		last, err := tr.CreateTask(types.Task{Title: "b", SprintID: f.sprint})
		require.NoError(t, err)
		require.NoError(t, tr.DeleteTask(last))

		next, err := tr.CreateTask(types.Task{Title: "c", SprintID: f.sprint})
		require.NoError(t, err)
		assert.Greater(t, next, last)
		assert.NotEqual(t, first, next)
	})
}

func TestSprintsOf(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		f := seed(t, tr)
		second, err := tr.CreateSprint(types.Sprint{StartDate: jan15, EndDate: jan28, ProjectID: f.project})
		require.NoError(t, err)

		views, err := tr.SprintsOf(f.project)
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, f.sprint, views[0].ID)
		assert.Equal(t, second, views[1].ID)
		assert.True(t, views[1].Project.Present())

		require.NoError(t, tr.UpdateSprint(types.Sprint{ID: second, StartDate: jan15, EndDate: jan15, ProjectID: f.project}))
		v, err := tr.GetSprint(second)
		require.NoError(t, err)
		assert.Equal(t, jan15, v.EndDate)
	})
}

func TestSnapshotExport(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker) {
		f := seed(t, tr)
		_, err := tr.CreateTask(types.Task{Title: "Fix <bug>", SprintID: f.sprint})
		require.NoError(t, err)

		snap, err := tr.Snapshot()
		require.NoError(t, err)
		assert.Len(t, snap.Users, 1)
		assert.Len(t, snap.Projects, 1)
		assert.Len(t, snap.Memberships, 1)
		assert.Len(t, snap.Sprints, 1)
		assert.Len(t, snap.Tasks, 1)
		assert.Empty(t, snap.Retrospectives)

		var js bytes.Buffer
		require.NoError(t, snap.WriteJSON(&js))
		var decoded Snapshot
		require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
		assert.Equal(t, snap.Tasks, decoded.Tasks)

		var doc bytes.Buffer
		require.NoError(t, snap.WriteXML(&doc))
		out := doc.String()
		assert.True(t, strings.HasPrefix(out, "<?xml"))
		assert.Contains(t, out, "<tracker>")
		assert.Contains(t, out, "<membership>")
		assert.Contains(t, out, "<title>Fix &lt;bug&gt;</title>")
		assert.Contains(t, out, "<start_date>2024-01-01</start_date>")
		assert.Contains(t, out, "<retrospectives></retrospectives>")
	})
}

func TestSnapshotStopsAtUnreadableTable(t *testing.T) {
	dir := t.TempDir()
	tr := openIn(t, types.BackendCSV, dir)
	seed(t, tr)
	path := filepath.Join(dir, types.TableTasks+".csv")
	require.NoError(t, os.WriteFile(path, []byte("\"id,title\n"), 0o644))

	_, err := tr.Snapshot()
	require.ErrorIs(t, err, types.ErrMalformedRecord)
	assert.Contains(t, err.Error(), "reading tasks")
}

func userIDs(users []types.User) []int64 {
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}
