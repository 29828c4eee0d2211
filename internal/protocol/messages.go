// Package protocol defines the websocket message catalogue.
//
// Every frame is a JSON object tagged with a top-level "type" field and
// flat payload fields. Client and server messages are closed sum types so
// dispatch over them is exhaustive rather than stringly-typed.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message type tags, client to server
const (
	TypeAuth        = "auth"
	TypeFindGame    = "find_game"
	TypePlayerReady = "player_ready"
	TypeScoreUpdate = "score_update"
	TypeGameOver    = "game_over"
	TypeLeaveRoom   = "leave_room"
)

// Message type tags, server to client
const (
	TypeAuthSuccess        = "auth_success"
	TypeWaitingForOpponent = "waiting_for_opponent"
	TypeGameFound          = "game_found"
	TypeGameStart          = "game_start"
	TypeOpponentScore      = "opponent_score"
	TypeOpponentFinished   = "opponent_finished"
	TypeOpponentLeft       = "opponent_left"
	TypeTimeUpdate         = "time_update"
	TypeGameEnd            = "game_end"
	TypeError              = "error"
)

// Errors
var (
	ErrUnknownType = errors.New("unknown message type")
)

// ClientMessage is a message sent from a client to the server
type ClientMessage interface {
	clientType() string
}

// ServerMessage is a message pushed from the server to a client
type ServerMessage interface {
	serverType() string
}

// Client to server messages

// Auth carries a bearer credential to establish the connection's identity
type Auth struct {
	Token string `json:"token"`
}

// FindGame requests matchmaking with a desired grid size
type FindGame struct {
	GridSize int `json:"gridSize"`
}

// PlayerReady acknowledges the ready notification; no payload
type PlayerReady struct{}

// ScoreUpdate reports the sender's current score and highest tile
type ScoreUpdate struct {
	Score   int `json:"score"`
	MaxTile int `json:"maxTile"`
}

// GameOver reports that the sender has run out of moves
type GameOver struct {
	Score   int `json:"score"`
	MaxTile int `json:"maxTile"`
}

// LeaveRoom abandons the sender's current room; no payload
type LeaveRoom struct{}

func (*Auth) clientType() string        { return TypeAuth }
func (*FindGame) clientType() string    { return TypeFindGame }
func (*PlayerReady) clientType() string { return TypePlayerReady }
func (*ScoreUpdate) clientType() string { return TypeScoreUpdate }
func (*GameOver) clientType() string    { return TypeGameOver }
func (*LeaveRoom) clientType() string   { return TypeLeaveRoom }

// Server to client messages

// AuthSuccess confirms the connection is authenticated
type AuthSuccess struct {
	Username string `json:"username"`
}

// WaitingForOpponent tells the requester a fresh room is holding for a peer
type WaitingForOpponent struct {
	RoomID   string `json:"roomId"`
	GridSize int    `json:"gridSize"`
}

// PlayerInfo is a participant's public pairing info
type PlayerInfo struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameFound notifies both occupants that the room is paired
type GameFound struct {
	RoomID   string       `json:"roomId"`
	Players  []PlayerInfo `json:"players"`
	GridSize int          `json:"gridSize"`
}

// GameStart signals the match countdown has begun
type GameStart struct {
	Duration int `json:"duration"`
}

// OpponentScore relays the opponent's latest score and tile
type OpponentScore struct {
	Score   int `json:"score"`
	MaxTile int `json:"maxTile"`
}

// OpponentFinished relays that the opponent ran out of moves
type OpponentFinished struct {
	Score int `json:"score"`
}

// OpponentLeft tells the remaining participant their opponent departed
type OpponentLeft struct{}

// TimeUpdate carries the countdown, pushed once per second while playing
type TimeUpdate struct {
	TimeLeft int `json:"timeLeft"`
}

// PlayerResult is one participant's line in the final standings
type PlayerResult struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	MaxTile  int    `json:"maxTile"`
	IsWinner bool   `json:"isWinner"`
}

// GameEnd carries the final standings for the match
type GameEnd struct {
	Results []PlayerResult `json:"results"`
	Winner  *string        `json:"winner"`
	IsDraw  bool           `json:"isDraw"`
}

// Error reports a protocol fault to the offending client only
type Error struct {
	Message string `json:"message"`
}

func (*AuthSuccess) serverType() string        { return TypeAuthSuccess }
func (*WaitingForOpponent) serverType() string { return TypeWaitingForOpponent }
func (*GameFound) serverType() string          { return TypeGameFound }
func (*GameStart) serverType() string          { return TypeGameStart }
func (*OpponentScore) serverType() string      { return TypeOpponentScore }
func (*OpponentFinished) serverType() string   { return TypeOpponentFinished }
func (*OpponentLeft) serverType() string       { return TypeOpponentLeft }
func (*TimeUpdate) serverType() string         { return TypeTimeUpdate }
func (*GameEnd) serverType() string            { return TypeGameEnd }
func (*Error) serverType() string              { return TypeError }

// DecodeClient parses a client frame into its concrete message type
func DecodeClient(data []byte) (ClientMessage, error) {
	tag, err := decodeTag(data)
	if err != nil {
		return nil, err
	}

	var msg ClientMessage
	switch tag {
	case TypeAuth:
		msg = &Auth{}
	case TypeFindGame:
		msg = &FindGame{}
	case TypePlayerReady:
		msg = &PlayerReady{}
	case TypeScoreUpdate:
		msg = &ScoreUpdate{}
	case TypeGameOver:
		msg = &GameOver{}
	case TypeLeaveRoom:
		msg = &LeaveRoom{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeServer parses a server frame into its concrete message type
func DecodeServer(data []byte) (ServerMessage, error) {
	tag, err := decodeTag(data)
	if err != nil {
		return nil, err
	}

	var msg ServerMessage
	switch tag {
	case TypeAuthSuccess:
		msg = &AuthSuccess{}
	case TypeWaitingForOpponent:
		msg = &WaitingForOpponent{}
	case TypeGameFound:
		msg = &GameFound{}
	case TypeGameStart:
		msg = &GameStart{}
	case TypeOpponentScore:
		msg = &OpponentScore{}
	case TypeOpponentFinished:
		msg = &OpponentFinished{}
	case TypeOpponentLeft:
		msg = &OpponentLeft{}
	case TypeTimeUpdate:
		msg = &TimeUpdate{}
	case TypeGameEnd:
		msg = &GameEnd{}
	case TypeError:
		msg = &Error{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// EncodeClient serializes a client message with its type tag
func EncodeClient(msg ClientMessage) ([]byte, error) {
	return encodeTagged(msg.clientType(), msg)
}

// EncodeServer serializes a server message with its type tag
func EncodeServer(msg ServerMessage) ([]byte, error) {
	return encodeTagged(msg.serverType(), msg)
}

func decodeTag(data []byte) (string, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return "", err
	}
	return env.Type, nil
}

// encodeTagged flattens the payload next to the type tag, matching the
// wire format: {"type": "...", <payload fields>}
func encodeTagged(tag string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(`"` + tag + `"`)

	return json.Marshal(fields)
}
