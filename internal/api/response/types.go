package response

import (
	"time"

	"github.com/tileduel/tileduel/internal/model"
	"github.com/tileduel/tileduel/internal/services/auth"
)

// Player is the API shape of a player
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResponse combines a player with their session token
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// Result is the API shape of a recorded game result
type Result struct {
	ID        string    `json:"id"`
	Score     int       `json:"score"`
	MaxTile   int       `json:"maxTile"`
	Moves     int       `json:"moves"`
	Won       bool      `json:"won"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardEntry is one leaderboard row
type LeaderboardEntry struct {
	PlayerID    string    `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	MaxTile     int       `json:"maxTile"`
	AchievedAt  time.Time `json:"achieved_at"`
}

// Leaderboard wraps the leaderboard rows
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// PlayerFromModel converts a model player to its API shape
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponseFromSession converts a session to its API shape
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// ResultFromModel converts a game result to its API shape
func ResultFromModel(r *model.GameResult) Result {
	return Result{
		ID:        string(r.ID),
		Score:     r.Score,
		MaxTile:   r.MaxTile,
		Moves:     r.Moves,
		Won:       r.Won,
		CreatedAt: r.CreatedAt,
	}
}

// LeaderboardFromEntries converts leaderboard rows to their API shape
func LeaderboardFromEntries(entries []model.LeaderboardEntry) Leaderboard {
	out := Leaderboard{Entries: make([]LeaderboardEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, LeaderboardEntry{
			PlayerID:    string(e.PlayerID),
			DisplayName: e.DisplayName,
			Score:       e.Score,
			MaxTile:     e.MaxTile,
			AchievedAt:  e.AchievedAt,
		})
	}
	return out
}
