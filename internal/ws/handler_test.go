package ws_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/tileduel/tileduel/internal/dependencies/mocks"
	"github.com/tileduel/tileduel/internal/protocol"
	"github.com/tileduel/tileduel/internal/services/auth"
	"github.com/tileduel/tileduel/internal/services/match"
	"github.com/tileduel/tileduel/internal/storage/memory"
	"github.com/tileduel/tileduel/internal/testutil"
	"github.com/tileduel/tileduel/internal/ws"
)

const readTimeout = 2 * time.Second

type HandlerSuite struct {
	suite.Suite
	clock       *mocks.MockClock
	random      *mocks.MockRandom
	authService *auth.Service
	coordinator *match.Coordinator
	server      *httptest.Server
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	store := memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	logger := testutil.NopLogger()

	s.authService = auth.New(store, s.clock, auth.DefaultConfig())
	s.coordinator = match.NewCoordinator(
		match.NewRegistry(), nil, s.clock, s.random, match.DefaultConfig(), logger)

	handler := ws.NewHandler(s.authService, s.coordinator, logger)
	s.server = httptest.NewServer(handler)
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
}

// dial opens a websocket connection to the test server
func (s *HandlerSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *HandlerSuite) send(conn *websocket.Conn, msg protocol.ClientMessage) {
	data, err := protocol.EncodeClient(msg)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, data))
}

// read waits for the next server frame and decodes it
func (s *HandlerSuite) read(conn *websocket.Conn) protocol.ServerMessage {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(readTimeout)))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)

	msg, err := protocol.DecodeServer(data)
	s.Require().NoError(err)
	return msg
}

// authedConn dials and authenticates as a fresh guest player
func (s *HandlerSuite) authedConn(name string) *websocket.Conn {
	session, err := s.authService.CreateGuestPlayer(context.Background(), name)
	s.Require().NoError(err)

	conn := s.dial()
	s.send(conn, &protocol.Auth{Token: session.Token})

	msg := s.read(conn)
	success, ok := msg.(*protocol.AuthSuccess)
	s.Require().True(ok, "expected auth_success, got %T", msg)
	s.Equal(name, success.Username)
	return conn
}

func (s *HandlerSuite) TestAuthWithValidToken() {
	s.authedConn("Alice")
}

func (s *HandlerSuite) TestAuthWithInvalidToken() {
	conn := s.dial()
	s.send(conn, &protocol.Auth{Token: "sess_bogus"})

	msg := s.read(conn)
	errMsg, ok := msg.(*protocol.Error)
	s.Require().True(ok)
	s.Equal("Invalid token", errMsg.Message)
}

func (s *HandlerSuite) TestUnauthenticatedActionRejected() {
	conn := s.dial()
	s.send(conn, &protocol.FindGame{GridSize: 4})

	msg := s.read(conn)
	errMsg, ok := msg.(*protocol.Error)
	s.Require().True(ok)
	s.Equal("Not authenticated", errMsg.Message)
}

func (s *HandlerSuite) TestAuthRetryAfterBadToken() {
	session, err := s.authService.CreateGuestPlayer(context.Background(), "Alice")
	s.Require().NoError(err)

	conn := s.dial()
	s.send(conn, &protocol.Auth{Token: "sess_bogus"})
	_, isErr := s.read(conn).(*protocol.Error)
	s.Require().True(isErr)

	// The connection survives a failed auth
	s.send(conn, &protocol.Auth{Token: session.Token})
	_, isSuccess := s.read(conn).(*protocol.AuthSuccess)
	s.True(isSuccess)
}

func (s *HandlerSuite) TestReauthRejectedAndSeatReleasedOnClose() {
	s.random.QueueString("aaaaaaaaa")
	alice, err := s.authService.CreateGuestPlayer(context.Background(), "Alice")
	s.Require().NoError(err)
	mallory, err := s.authService.CreateGuestPlayer(context.Background(), "Mallory")
	s.Require().NoError(err)

	conn := s.dial()
	s.send(conn, &protocol.Auth{Token: alice.Token})
	_, isSuccess := s.read(conn).(*protocol.AuthSuccess)
	s.Require().True(isSuccess)

	s.send(conn, &protocol.FindGame{GridSize: 4})
	_, isWaiting := s.read(conn).(*protocol.WaitingForOpponent)
	s.Require().True(isWaiting)

	// The connection's identity is fixed; a second auth must not take over
	s.send(conn, &protocol.Auth{Token: mallory.Token})
	msg := s.read(conn)
	errMsg, ok := msg.(*protocol.Error)
	s.Require().True(ok, "expected error, got %T", msg)
	s.Equal("Already authenticated", errMsg.Message)

	// Closing the transport must still tear down the original seat
	s.Require().NoError(conn.Close())
	s.Eventually(func() bool {
		_, seated := s.coordinator.RoomFor(alice.PlayerID)
		return !seated
	}, time.Second, 10*time.Millisecond, "Alice should not remain seated after the connection closed")
}

func (s *HandlerSuite) TestFindGameEntersWaitingRoom() {
	s.random.QueueString("aaaaaaaaa")
	conn := s.authedConn("Alice")

	s.send(conn, &protocol.FindGame{GridSize: 4})

	msg := s.read(conn)
	waiting, ok := msg.(*protocol.WaitingForOpponent)
	s.Require().True(ok, "expected waiting_for_opponent, got %T", msg)
	s.NotEmpty(waiting.RoomID)
	s.Equal(4, waiting.GridSize)
}

func (s *HandlerSuite) TestFullPairingFlow() {
	s.random.QueueString("aaaaaaaaa")
	conn1 := s.authedConn("Alice")
	conn2 := s.authedConn("Bob")

	s.send(conn1, &protocol.FindGame{GridSize: 4})
	_, isWaiting := s.read(conn1).(*protocol.WaitingForOpponent)
	s.Require().True(isWaiting)

	s.send(conn2, &protocol.FindGame{GridSize: 4})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg := s.read(conn)
		found, ok := msg.(*protocol.GameFound)
		s.Require().True(ok, "expected game_found, got %T", msg)
		s.Len(found.Players, 2)
	}

	s.send(conn1, &protocol.PlayerReady{})
	s.send(conn2, &protocol.PlayerReady{})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg := s.read(conn)
		start, ok := msg.(*protocol.GameStart)
		s.Require().True(ok, "expected game_start, got %T", msg)
		s.Equal(60, start.Duration)
	}

	// Score relay across the transport
	s.send(conn1, &protocol.ScoreUpdate{Score: 1200, MaxTile: 128})

	msg := s.read(conn2)
	relayed, ok := msg.(*protocol.OpponentScore)
	s.Require().True(ok, "expected opponent_score, got %T", msg)
	s.Equal(1200, relayed.Score)
	s.Equal(128, relayed.MaxTile)
}

func (s *HandlerSuite) TestWinPropagatesGameEnd() {
	s.random.QueueString("aaaaaaaaa")
	conn1 := s.authedConn("Alice")
	conn2 := s.authedConn("Bob")

	s.send(conn1, &protocol.FindGame{GridSize: 4})
	_ = s.read(conn1) // waiting_for_opponent
	s.send(conn2, &protocol.FindGame{GridSize: 4})
	_ = s.read(conn1) // game_found
	_ = s.read(conn2)
	s.send(conn1, &protocol.PlayerReady{})
	s.send(conn2, &protocol.PlayerReady{})
	_ = s.read(conn1) // game_start
	_ = s.read(conn2)

	s.send(conn1, &protocol.ScoreUpdate{Score: 20000, MaxTile: 2048})

	// The winner hears only the ending; the opponent also gets the relay
	msg := s.read(conn1)
	end, ok := msg.(*protocol.GameEnd)
	s.Require().True(ok, "expected game_end, got %T", msg)
	s.Require().NotNil(end.Winner)
	s.Equal("Alice", *end.Winner)

	_, isRelay := s.read(conn2).(*protocol.OpponentScore)
	s.Require().True(isRelay)
	msg = s.read(conn2)
	end, ok = msg.(*protocol.GameEnd)
	s.Require().True(ok, "expected game_end, got %T", msg)
	s.False(end.IsDraw)
}

func (s *HandlerSuite) TestMalformedFramesIgnored() {
	s.random.QueueString("aaaaaaaaa")
	conn := s.authedConn("Alice")

	// Garbage and unknown types are dropped without an error reply
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"cast_spell"}`)))

	// The connection is still usable
	s.send(conn, &protocol.FindGame{GridSize: 4})
	_, isWaiting := s.read(conn).(*protocol.WaitingForOpponent)
	s.True(isWaiting)
}
