package entity

import (
	"time"
)

type Show struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	StartTime   time.Time `json:"start_time" db:"start_time"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Group struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	IsCustom int    `json:"is_custom" db:"is_custom"`
	ShowID   *int64 `json:"show_id" db:"show_id"`
}

// VisibleTo reports whether the group can be targeted by calls of the show:
// global groups (default or custom) and custom groups scoped to that show.
func (g Group) VisibleTo(showID int64) bool {
	if g.ShowID == nil {
		return true
	}
	return g.IsCustom == 1 && *g.ShowID == showID
}

// DefaultGroupNames are seeded as system-wide groups on migration.
var DefaultGroupNames = []string{"All Call", "Cast", "Crew", "Orchestra", "Front of House"}
