package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinMinutesBefore = 1
	MaxMinutesBefore = 180
)

type Call struct {
	ID               int64      `json:"id" db:"id"`
	ShowID           int64      `json:"show_id" db:"show_id"`
	Title            string     `json:"title" db:"title"`
	Description      string     `json:"description" db:"description"`
	MinutesBefore    int        `json:"minutes_before" db:"minutes_before"`
	GroupIDs         GroupIDs   `json:"group_ids" db:"group_ids"`
	SendNotification NotifyFlag `json:"send_notification" db:"send_notification"`
}

// GroupIDs is the normalised set of group identifiers a call targets.
// The data store may hand it over either as a JSON array or as a string
// holding a JSON array; both are decoded here, once. Malformed input does not
// fail the surrounding decode, it is kept and reported by Targets.
type GroupIDs struct {
	ids []int64
	raw string
	bad bool
}

func NewGroupIDs(ids ...int64) GroupIDs {
	return GroupIDs{ids: append([]int64(nil), ids...)}
}

// ParseGroupIDs normalises the textual form ("[1,2]", "", "null").
func ParseGroupIDs(s string) GroupIDs {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return GroupIDs{}
	}
	ids, err := decodeIDArray([]byte(s))
	if err != nil {
		return GroupIDs{raw: s, bad: true}
	}
	return GroupIDs{ids: ids}
}

func decodeIDArray(data []byte) ([]int64, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		dec := json.NewDecoder(bytes.NewReader(item))
		dec.UseNumber()
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		var n json.Number
		switch t := v.(type) {
		case json.Number:
			n = t
		case string:
			n = json.Number(strings.TrimSpace(t))
		default:
			return nil, fmt.Errorf("unexpected group id %s", string(item))
		}
		id, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("group id %q: %w", n.String(), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Targets returns the ids or ErrMalformedGroupIDs.
func (g GroupIDs) Targets() ([]int64, error) {
	if g.bad {
		return nil, fmt.Errorf("%w: %q", ErrMalformedGroupIDs, g.raw)
	}
	return g.ids, nil
}

func (g GroupIDs) Valid() bool { return !g.bad }

func (g *GroupIDs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*g = GroupIDs{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = ParseGroupIDs(s)
	default:
		*g = ParseGroupIDs(string(data))
	}
	return nil
}

func (g GroupIDs) MarshalJSON() ([]byte, error) {
	if g.bad {
		return json.Marshal(g.raw)
	}
	if g.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(g.ids)
}

// Value stores the set as a JSON text column.
func (g GroupIDs) Value() (driver.Value, error) {
	if g.bad {
		return g.raw, nil
	}
	b, err := g.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (g *GroupIDs) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*g = GroupIDs{}
	case string:
		*g = ParseGroupIDs(v)
	case []byte:
		*g = ParseGroupIDs(string(v))
	default:
		return fmt.Errorf("cannot scan type %T into GroupIDs", value)
	}
	return nil
}

// NotifyFlag is the tri-state auto-notify switch: 1 enables, 0 or absent is
// manual only.
type NotifyFlag int

const (
	NotifyManual NotifyFlag = 0
	NotifyAuto   NotifyFlag = 1
)

func (f NotifyFlag) Enabled() bool { return f == NotifyAuto }

func (f *NotifyFlag) UnmarshalJSON(data []byte) error {
	switch s := strings.Trim(strings.TrimSpace(string(data)), `"`); s {
	case "", "null", "0", "false":
		*f = NotifyManual
	case "1", "true":
		*f = NotifyAuto
	default:
		return fmt.Errorf("%w: send_notification %s", ErrInvalidInput, string(data))
	}
	return nil
}
