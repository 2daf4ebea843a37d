package entity

import "time"

// Banner is an in-app alert shown when no native channel exists.
type Banner struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CallFired is published to the broker each time a call notification fires.
type CallFired struct {
	ID        string    `json:"id"`
	CallID    int64     `json:"call_id"`
	ShowID    int64     `json:"show_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	TriggerAt time.Time `json:"trigger_at"`
	FiredAt   time.Time `json:"fired_at"`
}

type Countdown struct {
	CallID    int64     `json:"call_id"`
	ShowID    int64     `json:"show_id"`
	Title     string    `json:"title"`
	TriggerAt time.Time `json:"trigger_at"`
	Remaining string    `json:"remaining"`
	Due       bool      `json:"due"`
	Notified  bool      `json:"notified"`
}
