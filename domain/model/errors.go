package model

import "errors"

var (
	// ErrRoomNotFound covers both rooms that never existed and rooms whose TTL lapsed.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when the room is at capacity and the caller is not a member.
	ErrRoomFull = errors.New("room is full")
	// ErrInvalid marks malformed input rejected before any store mutation.
	ErrInvalid = errors.New("invalid input")
	// ErrStoreUnavailable wraps transient I/O faults from the ephemeral store.
	ErrStoreUnavailable = errors.New("ephemeral store unavailable")
	// ErrUnauthorized is returned when the membership token is missing or not recognized.
	ErrUnauthorized = errors.New("unauthorized")
)
