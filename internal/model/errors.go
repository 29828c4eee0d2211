package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotInRoom      = errors.New("player is not in a room")
	ErrAlreadyInRoom  = errors.New("player is already in a room")
	ErrRoomNotPlaying = errors.New("room is not in a playing state")

	// Protocol errors
	ErrUnauthenticated = errors.New("not authenticated")

	// Result errors
	ErrResultNotFound = errors.New("result not found")
)
