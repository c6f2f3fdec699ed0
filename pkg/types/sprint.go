package types

import "time"

// Sprint is a dated iteration owned by a project. Dates carry no time of
// day.
type Sprint struct {
	ID        int64     `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	ProjectID int64     `json:"project_id"`
}

// Validate checks the owning project id and the date range.
func (s Sprint) Validate() error {
	if s.ProjectID <= 0 {
		return ErrInvalidData
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return ErrInvalidData
	}
	if Date(s.EndDate).Before(Date(s.StartDate)) {
		return ErrInvalidData
	}
	return nil
}

// Contains reports whether day falls within the sprint, inclusive.
func (s Sprint) Contains(day time.Time) bool {
	d := Date(day)
	return !d.Before(Date(s.StartDate)) && !d.After(Date(s.EndDate))
}
