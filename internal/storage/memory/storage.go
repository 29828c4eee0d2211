package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tileduel/tileduel/internal/model"
	"github.com/tileduel/tileduel/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	emailIndex        map[string]model.PlayerID
	results           map[model.ResultID]*model.GameResult
	resultOrder       []model.ResultID // insertion order, for stable iteration
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		emailIndex:        make(map[string]model.PlayerID),
		results:           make(map[model.ResultID]*model.GameResult),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registeredPlayers[rp.PlayerID] = rp
	s.usernameIndex[rp.Username] = rp.PlayerID
	if rp.Email != "" {
		s.emailIndex[rp.Email] = rp.PlayerID
	}
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupRegistered(s.usernameIndex, username)
}

func (s *Storage) GetRegisteredPlayerByEmail(ctx context.Context, email string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupRegistered(s.emailIndex, email)
}

// lookupRegistered resolves an index entry to its registered player.
// Caller must hold at least a read lock.
func (s *Storage) lookupRegistered(index map[string]model.PlayerID, key string) (*model.RegisteredPlayer, error) {
	playerID, ok := index[key]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return rp, nil
}

// Game result operations

func (s *Storage) SaveResult(ctx context.Context, result *model.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.results[result.ID]; !exists {
		s.resultOrder = append(s.resultOrder, result.ID)
	}
	s.results[result.ID] = result
	return nil
}

func (s *Storage) GetResultsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.GameResult
	for _, id := range s.resultOrder {
		if r := s.results[id]; r.PlayerID == playerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Storage) GetTopResults(ctx context.Context, limit int) ([]*model.GameResult, error) {
	s.mu.RLock()
	all := make([]*model.GameResult, 0, len(s.resultOrder))
	for _, id := range s.resultOrder {
		all = append(all, s.results[id])
	}
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
