package match

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tileduel/tileduel/internal/dependencies/clock"
	"github.com/tileduel/tileduel/internal/dependencies/random"
	"github.com/tileduel/tileduel/internal/model"
	"github.com/tileduel/tileduel/internal/protocol"
)

const roomSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// ResultRecorder persists a participant's final line after a match ends
type ResultRecorder interface {
	RecordMatch(ctx context.Context, playerID model.PlayerID, score, maxTile int, won bool) error
}

// Config holds tunables for the realtime match engine
type Config struct {
	MatchDuration   time.Duration // total match time
	TickInterval    time.Duration // countdown push cadence
	WinTile         int           // max tile that wins outright
	GraceDelay      time.Duration // how long an ended room lingers before purge
	DefaultGridSize int
	MinGridSize     int
	MaxGridSize     int
}

// DefaultConfig returns the standard match settings
func DefaultConfig() Config {
	return Config{
		MatchDuration:   60 * time.Second,
		TickInterval:    time.Second,
		WinTile:         2048,
		GraceDelay:      5 * time.Second,
		DefaultGridSize: 4,
		MinGridSize:     3,
		MaxGridSize:     6,
	}
}

// roomState couples a room with the timers the room owns. The room is the
// only entity permitted to cancel or reschedule them.
type roomState struct {
	room       *model.Room
	ticker     clock.Ticker
	tickerDone chan struct{}
	purgeTimer clock.Timer
}

// Coordinator owns all live rooms and drives their state machines.
//
// All room mutation happens under one mutex, so a clock tick always
// completes before the next inbound message is processed and vice versa.
// Simultaneous win reports are therefore ordered by lock acquisition:
// the first one through claims the win.
type Coordinator struct {
	registry *Registry
	recorder ResultRecorder
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
	cfg      Config

	mu       sync.Mutex
	rooms    map[model.RoomID]*roomState
	byPlayer map[model.PlayerID]model.RoomID
}

// NewCoordinator creates a Coordinator. recorder may be nil when match
// outcomes should not be persisted.
func NewCoordinator(
	registry *Registry,
	recorder ResultRecorder,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *Coordinator {
	if cfg.MatchDuration == 0 {
		cfg = DefaultConfig()
	}
	return &Coordinator{
		registry: registry,
		recorder: recorder,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "match")),
		cfg:      cfg,
		rooms:    make(map[model.RoomID]*roomState),
		byPlayer: make(map[model.PlayerID]model.RoomID),
	}
}

// Registry returns the coordinator's session registry
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// FindGame pairs the player with a waiting room or opens a new one.
// A player already seated somewhere leaves that room first, so an identity
// is never in two rooms at once.
func (c *Coordinator) FindGame(ctx context.Context, player model.Player, gridSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, seated := c.byPlayer[player.ID]; seated {
		c.leaveRoomLocked(ctx, player.ID)
	}

	if gridSize < c.cfg.MinGridSize || gridSize > c.cfg.MaxGridSize {
		gridSize = c.cfg.DefaultGridSize
	}

	// First waiting single-occupant room wins; the requested grid size is
	// ignored in favor of the room's
	for _, rs := range c.rooms {
		if rs.room.Status == model.RoomStatusWaiting && len(rs.room.Players) == 1 {
			c.joinRoomLocked(rs, player)
			return
		}
	}

	c.createRoomLocked(player, gridSize)
}

// PlayerReady records a readiness ack; the match starts once both are in.
// Repeated acks from the same side are idempotent.
func (c *Coordinator) PlayerReady(ctx context.Context, playerID model.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs := c.roomForLocked(playerID)
	if rs == nil || rs.room.Status != model.RoomStatusReady {
		return
	}

	p := rs.room.GetParticipant(playerID)
	if p == nil {
		return
	}
	p.Ready = true

	if rs.room.AllReady() {
		c.startMatchLocked(rs)
	}
}

// ScoreUpdate replaces the sender's score state and relays it to the
// opponent. A tile at or above the win threshold ends the match at once,
// first report wins; a later, even higher report never overturns it.
func (c *Coordinator) ScoreUpdate(ctx context.Context, playerID model.PlayerID, score, maxTile int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs := c.roomForLocked(playerID)
	if rs == nil || rs.room.Status != model.RoomStatusPlaying {
		return
	}

	p := rs.room.GetParticipant(playerID)
	if p == nil {
		return
	}
	p.Score = score
	p.MaxTile = maxTile

	if opp := rs.room.Opponent(playerID); opp != nil {
		c.send(opp.ID, &protocol.OpponentScore{Score: score, MaxTile: maxTile})
	}

	if maxTile >= c.cfg.WinTile && rs.room.WinnerID == nil {
		winner := playerID
		c.endMatchLocked(ctx, rs, &winner)
	}
}

// GameOver marks the sender finished (out of moves) and relays a finish
// notice. The match ends when both sides are done.
func (c *Coordinator) GameOver(ctx context.Context, playerID model.PlayerID, score, maxTile int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs := c.roomForLocked(playerID)
	if rs == nil || rs.room.Status != model.RoomStatusPlaying {
		return
	}

	p := rs.room.GetParticipant(playerID)
	if p == nil {
		return
	}
	p.Finished = true
	p.Score = score
	p.MaxTile = maxTile

	if opp := rs.room.Opponent(playerID); opp != nil {
		c.send(opp.ID, &protocol.OpponentFinished{Score: score})
	}

	if rs.room.AllFinished() {
		c.endMatchLocked(ctx, rs, nil)
	}
}

// LeaveRoom removes the player from their current room
func (c *Coordinator) LeaveRoom(ctx context.Context, playerID model.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaveRoomLocked(ctx, playerID)
}

// Disconnect handles a transport close. A close from a connection that has
// already been superseded by a reconnect is a no-op.
func (c *Coordinator) Disconnect(ctx context.Context, playerID model.PlayerID, conn Conn) {
	if !c.registry.Unregister(playerID, conn) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaveRoomLocked(ctx, playerID)
}

// Tick advances a room's countdown by one interval. Ticks against rooms
// that are gone or no longer playing are dropped.
func (c *Coordinator) Tick(ctx context.Context, roomID model.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs, ok := c.rooms[roomID]
	if !ok || rs.room.Status != model.RoomStatusPlaying {
		return
	}

	rs.room.TimeLeft--
	c.broadcastLocked(rs, &protocol.TimeUpdate{TimeLeft: rs.room.TimeLeft})

	if rs.room.TimeLeft <= 0 {
		c.endMatchLocked(ctx, rs, nil)
	}
}

// Room returns the coordinator's live room state. The pointer keeps being
// mutated under the coordinator's lock, so it is only safe to read between
// coordinator operations, not concurrently with them.
func (c *Coordinator) Room(roomID model.RoomID) (*model.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rs, ok := c.rooms[roomID]
	if !ok {
		return nil, false
	}
	return rs.room, true
}

// RoomFor returns the room currently holding the player, if any. The same
// read rules as Room apply.
func (c *Coordinator) RoomFor(playerID model.PlayerID) (*model.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rs := c.roomForLocked(playerID)
	if rs == nil {
		return nil, false
	}
	return rs.room, true
}

// Internal state transitions. Everything below runs with c.mu held.

func (c *Coordinator) createRoomLocked(player model.Player, gridSize int) {
	now := c.clock.Now()
	roomID := model.RoomID(fmt.Sprintf("room_%d_%s",
		now.UnixMilli(), c.random.String(9, roomSuffixAlphabet)))

	rs := &roomState{
		room: &model.Room{
			ID:        roomID,
			Status:    model.RoomStatusWaiting,
			Players:   []*model.Participant{participantFor(player)},
			GridSize:  gridSize,
			TimeLeft:  int(c.cfg.MatchDuration / time.Second),
			CreatedAt: now,
		},
	}
	c.rooms[roomID] = rs
	c.byPlayer[player.ID] = roomID

	c.send(player.ID, &protocol.WaitingForOpponent{
		RoomID:   string(roomID),
		GridSize: gridSize,
	})

	c.logger.Info("room created",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(player.ID)),
		slog.Int("grid_size", gridSize))
}

func (c *Coordinator) joinRoomLocked(rs *roomState, player model.Player) {
	rs.room.Players = append(rs.room.Players, participantFor(player))
	rs.room.Status = model.RoomStatusReady
	c.byPlayer[player.ID] = rs.room.ID

	found := &protocol.GameFound{
		RoomID:   string(rs.room.ID),
		GridSize: rs.room.GridSize,
	}
	for _, p := range rs.room.Players {
		found.Players = append(found.Players, protocol.PlayerInfo{Name: p.Name, Score: p.Score})
	}
	c.broadcastLocked(rs, found)

	c.logger.Info("room paired",
		slog.String("room_id", string(rs.room.ID)),
		slog.String("player_id", string(player.ID)))
}

func (c *Coordinator) startMatchLocked(rs *roomState) {
	duration := int(c.cfg.MatchDuration / time.Second)
	rs.room.Status = model.RoomStatusPlaying
	rs.room.TimeLeft = duration

	c.broadcastLocked(rs, &protocol.GameStart{Duration: duration})
	c.startClockLocked(rs)

	c.logger.Info("match started",
		slog.String("room_id", string(rs.room.ID)),
		slog.Int("duration_seconds", duration))
}

// startClockLocked attaches the per-room countdown. The goroutine only
// forwards ticks; all state changes happen in Tick under the lock.
func (c *Coordinator) startClockLocked(rs *roomState) {
	rs.ticker = c.clock.NewTicker(c.cfg.TickInterval)
	rs.tickerDone = make(chan struct{})

	roomID := rs.room.ID
	ticker := rs.ticker
	done := rs.tickerDone

	go func() {
		for {
			select {
			case <-ticker.Chan():
				c.Tick(context.Background(), roomID)
			case <-done:
				return
			}
		}
	}()
}

// stopClockLocked cancels the room's countdown if one is attached
func (c *Coordinator) stopClockLocked(rs *roomState) {
	if rs.ticker == nil {
		return
	}
	rs.ticker.Stop()
	close(rs.tickerDone)
	rs.ticker = nil
	rs.tickerDone = nil
}

// endMatchLocked resolves the match and schedules the room for purge.
// winnerID pins an explicit winner (win-by-tile or default-on-disconnect);
// nil falls through to score comparison, equal scores being a draw.
func (c *Coordinator) endMatchLocked(ctx context.Context, rs *roomState, winnerID *model.PlayerID) {
	if rs.room.Status == model.RoomStatusEnded {
		return
	}

	c.stopClockLocked(rs)
	rs.room.Status = model.RoomStatusEnded

	if winnerID == nil && len(rs.room.Players) == 2 {
		a, b := rs.room.Players[0], rs.room.Players[1]
		if a.Score > b.Score {
			winnerID = &a.ID
		} else if b.Score > a.Score {
			winnerID = &b.ID
		}
	}
	rs.room.WinnerID = winnerID

	end := &protocol.GameEnd{IsDraw: winnerID == nil}
	for _, p := range rs.room.Players {
		isWinner := winnerID != nil && p.ID == *winnerID
		if isWinner {
			name := p.Name
			end.Winner = &name
		}
		end.Results = append(end.Results, protocol.PlayerResult{
			Name:     p.Name,
			Score:    p.Score,
			MaxTile:  p.MaxTile,
			IsWinner: isWinner,
		})
	}
	c.broadcastLocked(rs, end)

	if c.recorder != nil {
		for _, p := range rs.room.Players {
			won := winnerID != nil && p.ID == *winnerID
			if err := c.recorder.RecordMatch(ctx, p.ID, p.Score, p.MaxTile, won); err != nil {
				c.logger.Error("failed to record match result",
					slog.String("room_id", string(rs.room.ID)),
					slog.String("player_id", string(p.ID)),
					slog.String("error", err.Error()))
			}
		}
	}

	// Let trailing messages land before the room disappears
	roomID := rs.room.ID
	rs.purgeTimer = c.clock.AfterFunc(c.cfg.GraceDelay, func() {
		c.removeRoom(roomID)
	})

	c.logger.Info("match ended",
		slog.String("room_id", string(rs.room.ID)),
		slog.Bool("draw", winnerID == nil))
}

func (c *Coordinator) leaveRoomLocked(ctx context.Context, playerID model.PlayerID) {
	rs := c.roomForLocked(playerID)
	delete(c.byPlayer, playerID)
	if rs == nil {
		return
	}

	rs.room.RemoveParticipant(playerID)

	if len(rs.room.Players) == 0 {
		// Nobody left to read trailing messages; drop the room now
		c.stopClockLocked(rs)
		if rs.purgeTimer != nil {
			rs.purgeTimer.Stop()
		}
		delete(c.rooms, rs.room.ID)
		return
	}

	c.broadcastLocked(rs, &protocol.OpponentLeft{})

	if rs.room.Status == model.RoomStatusPlaying {
		winner := rs.room.Players[0].ID
		c.endMatchLocked(ctx, rs, &winner)
	}
}

// removeRoom purges an ended room after its grace delay
func (c *Coordinator) removeRoom(roomID model.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs, ok := c.rooms[roomID]
	if !ok {
		return
	}

	c.stopClockLocked(rs)
	for _, p := range rs.room.Players {
		if c.byPlayer[p.ID] == roomID {
			delete(c.byPlayer, p.ID)
		}
	}
	delete(c.rooms, roomID)

	c.logger.Info("room purged", slog.String("room_id", string(roomID)))
}

func (c *Coordinator) roomForLocked(playerID model.PlayerID) *roomState {
	roomID, ok := c.byPlayer[playerID]
	if !ok {
		return nil
	}
	return c.rooms[roomID]
}

// send delivers to a player's current connection; no connection, no send
func (c *Coordinator) send(playerID model.PlayerID, msg protocol.ServerMessage) {
	if conn, ok := c.registry.Lookup(playerID); ok {
		conn.Send(msg)
	}
}

func (c *Coordinator) broadcastLocked(rs *roomState, msg protocol.ServerMessage) {
	for _, p := range rs.room.Players {
		c.send(p.ID, msg)
	}
}

func participantFor(player model.Player) *model.Participant {
	return &model.Participant{
		ID:   player.ID,
		Name: player.DisplayName,
	}
}
