package entity

import "errors"

var (
	// Show errors
	ErrShowNotFound = errors.New("show not found")

	// Call errors
	ErrCallNotFound      = errors.New("call not found")
	ErrInvalidMinutes    = errors.New("minutes before must be between 1 and 180")
	ErrMalformedGroupIDs = errors.New("malformed group ids")
	ErrUnknownGroup      = errors.New("group is not visible to the show")

	// Group errors
	ErrGroupNotFound      = errors.New("group not found")
	ErrDefaultGroupLocked = errors.New("default groups cannot be changed")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
