package types

// Retrospective records the outcome of a sprint. A sprint has at most one
// retrospective; callers upsert by sprint id.
type Retrospective struct {
	ID           int64    `json:"id"`
	SprintID     int64    `json:"sprint_id"`
	Summary      string   `json:"summary"`
	Improvements []string `json:"improvements,omitempty"`
	Positives    []string `json:"positives,omitempty"`
}

// Validate checks the owning sprint id.
func (r Retrospective) Validate() error {
	if r.SprintID <= 0 {
		return ErrInvalidData
	}
	return nil
}
