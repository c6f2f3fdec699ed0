package record

import (
	"strconv"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

type userCodec struct{}

func (userCodec) Table() string   { return types.TableUsers }
func (userCodec) Element() string { return "user" }

func (userCodec) Fields() []Field {
	return []Field{
		{IDField, KindID},
		{"name", KindText},
		{"email", KindText},
		{"bio", KindText},
		{"is_active", KindBool},
		{"last_login", KindOptionalTimestamp},
		{"date_joined", KindTimestamp},
	}
}

func (userCodec) Encode(u types.User) []string {
	return []string{
		formatID(u.ID),
		u.Name,
		u.Email,
		u.Bio,
		strconv.FormatBool(u.Active),
		formatOptionalTimestamp(u.LastLogin),
		FormatTimestamp(u.DateJoined),
	}
}

func (c userCodec) Decode(values []string) (types.User, error) {
	r, err := newFieldReader(c, values)
	if err != nil {
		return types.User{}, err
	}
	u := types.User{
		ID:         r.id(0),
		Name:       r.text(1),
		Email:      r.text(2),
		Bio:        r.text(3),
		Active:     r.boolean(4),
		LastLogin:  r.optionalTimestamp(5),
		DateJoined: r.timestamp(6),
	}
	if r.err != nil {
		return types.User{}, r.err
	}
	return u, nil
}

func (userCodec) ID(u types.User) int64 { return u.ID }

func (userCodec) WithID(u types.User, id int64) types.User {
	u.ID = id
	return u
}

type projectCodec struct{}

func (projectCodec) Table() string   { return types.TableProjects }
func (projectCodec) Element() string { return "project" }

func (projectCodec) Fields() []Field {
	return []Field{
		{IDField, KindID},
		{"name", KindText},
		{"description", KindText},
	}
}

func (projectCodec) Encode(p types.Project) []string {
	return []string{formatID(p.ID), p.Name, p.Description}
}

func (c projectCodec) Decode(values []string) (types.Project, error) {
	r, err := newFieldReader(c, values)
	if err != nil {
		return types.Project{}, err
	}
	p := types.Project{
		ID:          r.id(0),
		Name:        r.text(1),
		Description: r.text(2),
	}
	if r.err != nil {
		return types.Project{}, r.err
	}
	return p, nil
}

func (projectCodec) ID(p types.Project) int64 { return p.ID }

func (projectCodec) WithID(p types.Project, id int64) types.Project {
	p.ID = id
	return p
}

type sprintCodec struct{}

func (sprintCodec) Table() string   { return types.TableSprints }
func (sprintCodec) Element() string { return "sprint" }

func (sprintCodec) Fields() []Field {
	return []Field{
		{IDField, KindID},
		{"start_date", KindDate},
		{"end_date", KindDate},
		{"project_id", KindID},
	}
}

func (sprintCodec) Encode(s types.Sprint) []string {
	return []string{
		formatID(s.ID),
		FormatDate(s.StartDate),
		FormatDate(s.EndDate),
		formatID(s.ProjectID),
	}
}

func (c sprintCodec) Decode(values []string) (types.Sprint, error) {
	r, err := newFieldReader(c, values)
	if err != nil {
		return types.Sprint{}, err
	}
	s := types.Sprint{
		ID:        r.id(0),
		StartDate: r.date(1),
		EndDate:   r.date(2),
		ProjectID: r.id(3),
	}
	if r.err != nil {
		return types.Sprint{}, r.err
	}
	return s, nil
}

func (sprintCodec) ID(s types.Sprint) int64 { return s.ID }

func (sprintCodec) WithID(s types.Sprint, id int64) types.Sprint {
	s.ID = id
	return s
}

type taskCodec struct{}

func (taskCodec) Table() string   { return types.TableTasks }
func (taskCodec) Element() string { return "task" }

func (taskCodec) Fields() []Field {
	return []Field{
		{IDField, KindID},
		{"title", KindText},
		{"description", KindText},
		{"status", KindStatus},
		{"priority", KindInt},
		{"sprint_id", KindID},
		{"assigned_user_id", KindOptionalID},
	}
}

func (taskCodec) Encode(t types.Task) []string {
	return []string{
		formatID(t.ID),
		t.Title,
		t.Description,
		string(t.Status),
		strconv.Itoa(t.Priority),
		formatID(t.SprintID),
		formatOptionalID(t.AssignedUserID),
	}
}

func (c taskCodec) Decode(values []string) (types.Task, error) {
	r, err := newFieldReader(c, values)
	if err != nil {
		return types.Task{}, err
	}
	t := types.Task{
		ID:             r.id(0),
		Title:          r.text(1),
		Description:    r.text(2),
		Status:         r.status(3),
		Priority:       r.integer(4),
		SprintID:       r.id(5),
		AssignedUserID: r.optionalID(6),
	}
	if r.err != nil {
		return types.Task{}, r.err
	}
	return t, nil
}

func (taskCodec) ID(t types.Task) int64 { return t.ID }

func (taskCodec) WithID(t types.Task, id int64) types.Task {
	t.ID = id
	return t
}

type retrospectiveCodec struct{}

func (retrospectiveCodec) Table() string   { return types.TableRetrospectives }
func (retrospectiveCodec) Element() string { return "retrospective" }

func (retrospectiveCodec) Fields() []Field {
	return []Field{
		{IDField, KindID},
		{"sprint_id", KindID},
		{"summary", KindText},
		{"improvements", KindList},
		{"positives", KindList},
	}
}

func (retrospectiveCodec) Encode(r types.Retrospective) []string {
	return []string{
		formatID(r.ID),
		formatID(r.SprintID),
		r.Summary,
		JoinList(r.Improvements),
		JoinList(r.Positives),
	}
}

func (c retrospectiveCodec) Decode(values []string) (types.Retrospective, error) {
	r, err := newFieldReader(c, values)
	if err != nil {
		return types.Retrospective{}, err
	}
	retro := types.Retrospective{
		ID:           r.id(0),
		SprintID:     r.id(1),
		Summary:      r.text(2),
		Improvements: r.list(3),
		Positives:    r.list(4),
	}
	if r.err != nil {
		return types.Retrospective{}, r.err
	}
	return retro, nil
}

func (retrospectiveCodec) ID(r types.Retrospective) int64 { return r.ID }

func (retrospectiveCodec) WithID(r types.Retrospective, id int64) types.Retrospective {
	r.ID = id
	return r
}

type membershipCodec struct{}

func (membershipCodec) Table() string   { return types.TableMemberships }
func (membershipCodec) Element() string { return "membership" }

func (membershipCodec) Fields() []Field {
	return []Field{
		{"project_id", KindID},
		{"user_id", KindID},
	}
}

// Encode converts a pair to its field list.
func (membershipCodec) Encode(m types.Membership) []string {
	return []string{formatID(m.ProjectID), formatID(m.UserID)}
}

// Decode converts a field list to a pair.
func (c membershipCodec) Decode(values []string) (types.Membership, error) {
	r, err := newFieldReader(c, values)
	if err != nil {
		return types.Membership{}, err
	}
	m := types.Membership{ProjectID: r.id(0), UserID: r.id(1)}
	if r.err != nil {
		return types.Membership{}, r.err
	}
	return m, nil
}
