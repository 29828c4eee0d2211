package model

import "time"

// ResultID uniquely identifies a recorded game result
type ResultID string

// GameResult is a finished game recorded for the leaderboard.
// Both single-player submissions and versus-match outcomes land here.
type GameResult struct {
	ID        ResultID
	PlayerID  PlayerID
	Score     int
	MaxTile   int
	Moves     int
	Won       bool
	CreatedAt time.Time
}

// LeaderboardEntry is one row of the score leaderboard
type LeaderboardEntry struct {
	PlayerID    PlayerID
	DisplayName string
	Score       int
	MaxTile     int
	AchievedAt  time.Time
}
