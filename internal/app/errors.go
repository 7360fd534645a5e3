package service

import "errors"

var (
	// ErrNotStarted is returned when an operation is invoked before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrPlayerNotFound is returned when a player has no warehouse events.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrUnknownSourceType is returned for an unrecognized source config.
	ErrUnknownSourceType = errors.New("unknown source type")
)
