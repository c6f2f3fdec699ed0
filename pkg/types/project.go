package types

// Project groups sprints. Membership is kept in the LinkTable.
type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Validate checks that the project has a name.
func (p Project) Validate() error {
	if p.Name == "" {
		return ErrInvalidData
	}
	return nil
}

// Membership is one project/user association pair.
type Membership struct {
	ProjectID int64 `json:"project_id"`
	UserID    int64 `json:"user_id"`
}
