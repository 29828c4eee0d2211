package leaderboard

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tileduel/tileduel/internal/dependencies/clock"
	"github.com/tileduel/tileduel/internal/dependencies/random"
	"github.com/tileduel/tileduel/internal/model"
	"github.com/tileduel/tileduel/internal/storage"
)

const (
	resultIDLength   = 12
	resultIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultLimit caps leaderboard queries that don't specify one
	DefaultLimit = 10
)

// Service records finished games and answers leaderboard queries
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a leaderboard Service
func New(storage storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clk,
		random:  rnd,
		logger:  logger.With(slog.String("component", "leaderboard")),
	}
}

// SubmitResult records a finished single-player game
func (s *Service) SubmitResult(ctx context.Context, playerID model.PlayerID, score, maxTile, moves int, won bool) (*model.GameResult, error) {
	result := &model.GameResult{
		ID:        model.ResultID("res_" + s.random.String(resultIDLength, resultIDAlphabet)),
		PlayerID:  playerID,
		Score:     score,
		MaxTile:   maxTile,
		Moves:     moves,
		Won:       won,
		CreatedAt: s.clock.Now(),
	}

	if err := s.storage.SaveResult(ctx, result); err != nil {
		return nil, err
	}

	s.logger.Info("result recorded",
		slog.String("player_id", string(playerID)),
		slog.Int("score", score),
		slog.Int("max_tile", maxTile))

	return result, nil
}

// RecordMatch records one participant's outcome from a versus match.
// Satisfies the match engine's ResultRecorder contract.
func (s *Service) RecordMatch(ctx context.Context, playerID model.PlayerID, score, maxTile int, won bool) error {
	_, err := s.SubmitResult(ctx, playerID, score, maxTile, 0, won)
	return err
}

// Top returns the highest-scoring results with display names resolved.
// Results whose player has since expired are skipped.
func (s *Service) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	results, err := s.storage.GetTopResults(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(results))
	for _, r := range results {
		player, err := s.storage.GetPlayer(ctx, r.PlayerID)
		if err != nil {
			if errors.Is(err, model.ErrPlayerNotFound) {
				continue
			}
			return nil, err
		}
		entries = append(entries, model.LeaderboardEntry{
			PlayerID:    r.PlayerID,
			DisplayName: player.DisplayName,
			Score:       r.Score,
			MaxTile:     r.MaxTile,
			AchievedAt:  r.CreatedAt,
		})
	}
	return entries, nil
}

// BestForPlayer returns the player's highest-scoring result
func (s *Service) BestForPlayer(ctx context.Context, playerID model.PlayerID) (*model.GameResult, error) {
	results, err := s.storage.GetResultsForPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, model.ErrResultNotFound
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Score > best.Score {
			best = r
		}
	}
	return best, nil
}
