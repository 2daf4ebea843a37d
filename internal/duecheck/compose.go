package duecheck

import (
	"fmt"
	"strings"

	"github.com/ds124wfegd/showcaller/internal/entity"
)

const (
	defaultCallTitle = "Call Time"
	fallbackGroup    = "Call"
)

// GroupNames resolves the call's targets against the groups visible to its
// show, keeping the call's order and skipping unknown ids.
func GroupNames(call entity.Call, visible []entity.Group) ([]string, error) {
	ids, err := call.GroupIDs.Targets()
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]string, len(visible))
	for _, g := range visible {
		byID[g.ID] = g.Name
	}

	seen := make(map[int64]bool, len(ids))
	var names []string
	for _, id := range ids {
		name, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		names = append(names, name)
	}
	return names, nil
}

// Compose builds the alert text for a fired call:
// "Cast, Crew Call: Places" or, with no resolvable groups, "Call: Places".
func Compose(show entity.Show, call entity.Call, visible []entity.Group) (title, body string, err error) {
	names, err := GroupNames(call, visible)
	if err != nil {
		return "", "", fmt.Errorf("call %d: %w", call.ID, err)
	}

	callTitle := strings.TrimSpace(call.Title)
	if callTitle == "" {
		callTitle = defaultCallTitle
	}

	if len(names) > 0 {
		title = fmt.Sprintf("%s %s: %s", strings.Join(names, ", "), fallbackGroup, callTitle)
	} else {
		title = fmt.Sprintf("%s: %s", fallbackGroup, callTitle)
	}

	body = strings.TrimSpace(call.Description)
	if body == "" {
		showName := strings.TrimSpace(show.Name)
		if showName == "" {
			showName = "the show"
		}
		body = fmt.Sprintf("Time to prepare for %s.", showName)
	}
	return title, body, nil
}
