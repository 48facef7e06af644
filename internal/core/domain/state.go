package domain

// State is a named workflow stage shared globally across all projects,
// ordered by a strictly increasing Order with no duplicates. Tasks may be
// moved between states in any order; no transition machine is enforced.
type State struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// DefaultStates returns the workflow stages seeded on first startup.
func DefaultStates() []State {
	return []State{
		{Name: "pending", Order: 1},
		{Name: "in_progress", Order: 2},
		{Name: "in_revision", Order: 3},
		{Name: "completed", Order: 4},
	}
}
