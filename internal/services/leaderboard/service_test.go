package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tileduel/tileduel/internal/dependencies/mocks"
	"github.com/tileduel/tileduel/internal/model"
	"github.com/tileduel/tileduel/internal/storage/memory"
	"github.com/tileduel/tileduel/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) savePlayer(id string, name string) model.PlayerID {
	playerID := model.PlayerID(id)
	err := s.storage.SavePlayer(s.ctx, &model.Player{
		ID:          playerID,
		DisplayName: name,
		IsGuest:     true,
		CreatedAt:   s.clock.Now(),
	})
	s.Require().NoError(err)
	return playerID
}

// SubmitResult tests

func (s *ServiceSuite) TestSubmitResultSucceeds() {
	s.random.QueueString("AAAA11112222")
	playerID := s.savePlayer("p1", "Alice")

	result, err := s.service.SubmitResult(s.ctx, playerID, 1500, 256, 120, false)
	s.Require().NoError(err)

	s.Equal(model.ResultID("res_AAAA11112222"), result.ID)
	s.Equal(playerID, result.PlayerID)
	s.Equal(1500, result.Score)
	s.Equal(256, result.MaxTile)
	s.Equal(120, result.Moves)
	s.False(result.Won)
	s.Equal(s.clock.Now(), result.CreatedAt)
}

func (s *ServiceSuite) TestSubmitResultIsPersisted() {
	s.random.QueueString("AAAA11112222")
	playerID := s.savePlayer("p1", "Alice")

	_, _ = s.service.SubmitResult(s.ctx, playerID, 1500, 256, 120, false)

	results, err := s.storage.GetResultsForPlayer(s.ctx, playerID)
	s.Require().NoError(err)
	s.Len(results, 1)
}

// RecordMatch tests

func (s *ServiceSuite) TestRecordMatchStoresResult() {
	s.random.QueueString("AAAA11112222")
	playerID := s.savePlayer("p1", "Alice")

	err := s.service.RecordMatch(s.ctx, playerID, 2200, 2048, true)
	s.Require().NoError(err)

	results, _ := s.storage.GetResultsForPlayer(s.ctx, playerID)
	s.Require().Len(results, 1)
	s.True(results[0].Won)
	s.Equal(0, results[0].Moves)
}

// Top tests

func (s *ServiceSuite) TestTopOrdersByScore() {
	s.random.QueueString("RES000000001", "RES000000002", "RES000000003")
	alice := s.savePlayer("p1", "Alice")
	bob := s.savePlayer("p2", "Bob")

	_, _ = s.service.SubmitResult(s.ctx, alice, 800, 64, 50, false)
	_, _ = s.service.SubmitResult(s.ctx, bob, 2400, 256, 90, false)
	_, _ = s.service.SubmitResult(s.ctx, alice, 1200, 128, 70, false)

	entries, err := s.service.Top(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("Bob", entries[0].DisplayName)
	s.Equal(2400, entries[0].Score)
	s.Equal(1200, entries[1].Score)
	s.Equal(800, entries[2].Score)
}

func (s *ServiceSuite) TestTopAppliesLimit() {
	s.random.QueueString("RES000000001", "RES000000002", "RES000000003")
	alice := s.savePlayer("p1", "Alice")

	for _, score := range []int{100, 300, 200} {
		_, _ = s.service.SubmitResult(s.ctx, alice, score, 16, 10, false)
	}

	entries, err := s.service.Top(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(entries, 2)
	s.Equal(300, entries[0].Score)
}

func (s *ServiceSuite) TestTopSkipsExpiredPlayers() {
	s.random.QueueString("RES000000001", "RES000000002")
	alice := s.savePlayer("p1", "Alice")
	ghost := s.savePlayer("p2", "Ghost")

	_, _ = s.service.SubmitResult(s.ctx, alice, 500, 32, 40, false)
	_, _ = s.service.SubmitResult(s.ctx, ghost, 900, 64, 60, false)

	s.Require().NoError(s.storage.DeletePlayer(s.ctx, ghost))

	entries, err := s.service.Top(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("Alice", entries[0].DisplayName)
}

func (s *ServiceSuite) TestTopEmptyLeaderboard() {
	entries, err := s.service.Top(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}

// BestForPlayer tests

func (s *ServiceSuite) TestBestForPlayerReturnsHighestScore() {
	s.random.QueueString("RES000000001", "RES000000002", "RES000000003")
	alice := s.savePlayer("p1", "Alice")

	for _, score := range []int{400, 1800, 900} {
		_, _ = s.service.SubmitResult(s.ctx, alice, score, 128, 80, false)
	}

	best, err := s.service.BestForPlayer(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(1800, best.Score)
}

func (s *ServiceSuite) TestBestForPlayerWithNoResults() {
	alice := s.savePlayer("p1", "Alice")

	_, err := s.service.BestForPlayer(s.ctx, alice)
	s.ErrorIs(err, model.ErrResultNotFound)
}
