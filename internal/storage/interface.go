package storage

import (
	"context"

	"github.com/tileduel/tileduel/internal/model"
)

// Storage defines the interface for data persistence.
// Live match state is deliberately absent: rooms exist only in memory and
// die with the process.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByEmail(ctx context.Context, email string) (*model.RegisteredPlayer, error)

	// Game result operations
	SaveResult(ctx context.Context, result *model.GameResult) error
	GetResultsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.GameResult, error)
	GetTopResults(ctx context.Context, limit int) ([]*model.GameResult, error)
}
