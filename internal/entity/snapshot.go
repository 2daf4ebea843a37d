package entity

import "time"

// Snapshot is a read-only view of the data store taken at LoadedAt.
type Snapshot struct {
	Shows    []Show
	Calls    []Call
	Groups   []Group
	LoadedAt time.Time
}

func (s *Snapshot) ShowByID(id int64) (Show, bool) {
	for _, show := range s.Shows {
		if show.ID == id {
			return show, true
		}
	}
	return Show{}, false
}

// GroupsFor returns the groups calls of the show may target.
func (s *Snapshot) GroupsFor(showID int64) []Group {
	var groups []Group
	for _, g := range s.Groups {
		if g.VisibleTo(showID) {
			groups = append(groups, g)
		}
	}
	return groups
}
