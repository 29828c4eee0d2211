package model

import "time"

// RoomID uniquely identifies a versus-match room
type RoomID string

// RoomStatus represents the lifecycle state of a room.
// Rooms only ever move forward: waiting -> ready -> playing -> ended.
type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting" // one participant, looking for an opponent
	RoomStatusReady   RoomStatus = "ready"   // both participants present, awaiting acks
	RoomStatusPlaying RoomStatus = "playing" // countdown running
	RoomStatusEnded   RoomStatus = "ended"   // terminal; purged after a grace delay
)

// Participant is a player's state within a room
type Participant struct {
	ID       PlayerID
	Name     string
	Score    int
	MaxTile  int
	Ready    bool
	Finished bool
}

// Room pairs two players for one timed match
type Room struct {
	ID        RoomID
	Status    RoomStatus
	Players   []*Participant // arrival order, at most 2
	GridSize  int
	TimeLeft  int       // seconds, meaningful only while playing
	WinnerID  *PlayerID // set at most once
	CreatedAt time.Time
}

// GetParticipant returns the participant with the given player ID, or nil
func (r *Room) GetParticipant(playerID PlayerID) *Participant {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// Opponent returns the other participant in the room, or nil
func (r *Room) Opponent(playerID PlayerID) *Participant {
	for _, p := range r.Players {
		if p.ID != playerID {
			return p
		}
	}
	return nil
}

// AllReady reports whether both participants have acknowledged readiness
func (r *Room) AllReady() bool {
	if len(r.Players) < 2 {
		return false
	}
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// AllFinished reports whether every participant has run out of moves
func (r *Room) AllFinished() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if !p.Finished {
			return false
		}
	}
	return true
}

// RemoveParticipant drops the participant with the given ID, preserving order
func (r *Room) RemoveParticipant(playerID PlayerID) {
	for i, p := range r.Players {
		if p.ID == playerID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return
		}
	}
}

// ParticipantResult is one participant's line in the final results
type ParticipantResult struct {
	Name     string
	Score    int
	MaxTile  int
	IsWinner bool
}
