package redis

import (
	"fmt"

	"github.com/tileduel/tileduel/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "tileduel"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// emailIndexKey returns the Redis key for the email -> player_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// resultKey returns the Redis key for a GameResult
func resultKey(id model.ResultID) string {
	return fmt.Sprintf("%s:result:%s", keyPrefix, id)
}

// resultsForPlayerKey returns the Redis key for the LIST of a player's result IDs
func resultsForPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:results_for_player:%s", keyPrefix, playerID)
}

// leaderboardKey returns the Redis key for the score-ordered ZSET of result IDs
func leaderboardKey() string {
	return fmt.Sprintf("%s:leaderboard", keyPrefix)
}
