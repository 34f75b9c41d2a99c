package domain

import "time"

// Category groups jobs by kind of work.
type Category struct {
	ID   int64
	Name string
}

// Job is a unit of work led by one user and tagged with zero or more categories.
// Collaborators is free text (comma-separated user ids), not a modelled relation.
type Job struct {
	ID            int64
	TeamLeaderID  int64
	Title         string
	WorkSize      *int
	Collaborators *string
	StartDate     *time.Time
	EndDate       *time.Time
	IsFinished    bool
	Categories    []Category
}
