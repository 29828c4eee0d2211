package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/tileduel/tileduel/internal/protocol"
)

func newDuelCmd() *cobra.Command {
	var gridSize int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "duel",
		Short: "Find an opponent and play a realtime match",
		Long: `Connect to the server's websocket endpoint, authenticate, and enter
matchmaking. Once paired, the match starts when both players are ready
and runs on the server's countdown.

While the match is running, enter commands on stdin:
  score <points> [maxTile]   report your current score
  over                       report you are out of moves
  leave                      abandon the match
  quit                       disconnect

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return fmt.Errorf("no session token; run 'tileduel player guest' or 'tileduel player login' first")
			}
			return runDuel(gridSize, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&gridSize, "grid-size", 0, "Preferred grid size, 3 to 6 (0 uses the server default)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// duelSession holds the state of one interactive match connection
type duelSession struct {
	conn       *websocket.Conn
	jsonOutput bool

	score   int
	maxTile int
}

func runDuel(gridSize int, jsonOutput bool) error {
	wsURL, err := websocketURL(cfg.ServerURL)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	s := &duelSession{conn: conn, jsonOutput: jsonOutput}

	// Authenticate before anything else; the server rejects other
	// messages until this succeeds
	if err := s.send(&protocol.Auth{Token: cfg.Token}); err != nil {
		return err
	}
	if err := s.send(&protocol.FindGame{GridSize: gridSize}); err != nil {
		return err
	}

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go s.readLoop(done)
	go s.stdinLoop()

	select {
	case err := <-done:
		return err
	case <-sigCh:
		// Best-effort close handshake
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		if !jsonOutput {
			fmt.Println("\nDisconnected")
		}
		return nil
	}
}

// websocketURL derives the /ws endpoint from the configured server URL
func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server URL scheme: %s", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

func (s *duelSession) send(msg protocol.ClientMessage) error {
	data, err := protocol.EncodeClient(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *duelSession) readLoop(done chan<- error) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				done <- nil
			} else {
				done <- fmt.Errorf("connection lost: %w", err)
			}
			return
		}

		msg, err := protocol.DecodeServer(data)
		if err != nil {
			// Skip messages we don't understand
			continue
		}

		if s.jsonOutput {
			line, _ := json.Marshal(eventLine{Time: time.Now(), Data: data})
			fmt.Println(string(line))
		} else {
			s.printEvent(msg)
		}

		switch msg.(type) {
		case *protocol.GameFound:
			// Auto-ready; the terminal client has no separate ready step
			if err := s.send(&protocol.PlayerReady{}); err != nil {
				done <- err
				return
			}
		case *protocol.GameEnd:
			done <- nil
			return
		}
	}
}

// stdinLoop reads player commands and forwards them to the server.
// It exits when stdin closes; the match continues on server time.
func (s *duelSession) stdinLoop() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "score":
			if len(fields) < 2 {
				fmt.Println("usage: score <points> [maxTile]")
				continue
			}
			score, convErr := strconv.Atoi(fields[1])
			if convErr != nil {
				fmt.Println("score must be a number")
				continue
			}
			s.score = score
			if len(fields) >= 3 {
				if tile, convErr := strconv.Atoi(fields[2]); convErr == nil {
					s.maxTile = tile
				}
			}
			err = s.send(&protocol.ScoreUpdate{Score: s.score, MaxTile: s.maxTile})
		case "over":
			err = s.send(&protocol.GameOver{Score: s.score, MaxTile: s.maxTile})
		case "leave":
			err = s.send(&protocol.LeaveRoom{})
		case "quit":
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		default:
			fmt.Printf("unknown command: %s\n", fields[0])
			continue
		}

		if err != nil {
			return
		}
	}
}

func (s *duelSession) printEvent(msg protocol.ServerMessage) {
	switch m := msg.(type) {
	case *protocol.AuthSuccess:
		fmt.Printf("Authenticated as %s\n", m.Username)
	case *protocol.WaitingForOpponent:
		fmt.Printf("Waiting for an opponent (room %s, grid %dx%d)...\n", m.RoomID, m.GridSize, m.GridSize)
	case *protocol.GameFound:
		names := make([]string, 0, len(m.Players))
		for _, p := range m.Players {
			names = append(names, p.Name)
		}
		fmt.Printf("Opponent found: %s (room %s)\n", strings.Join(names, " vs "), m.RoomID)
	case *protocol.GameStart:
		fmt.Printf("Game on! %d seconds on the clock\n", m.Duration)
	case *protocol.OpponentScore:
		fmt.Printf("Opponent: %d points (tile %d)\n", m.Score, m.MaxTile)
	case *protocol.OpponentFinished:
		fmt.Printf("Opponent is out of moves at %d points\n", m.Score)
	case *protocol.OpponentLeft:
		fmt.Println("Opponent left the match")
	case *protocol.TimeUpdate:
		fmt.Printf("%ds remaining\n", m.TimeLeft)
	case *protocol.GameEnd:
		s.printGameEnd(m)
	case *protocol.Error:
		fmt.Printf("Server error: %s\n", m.Message)
	}
}

func (s *duelSession) printGameEnd(m *protocol.GameEnd) {
	fmt.Println("\nFinal standings:")
	for _, r := range m.Results {
		marker := ""
		if r.IsWinner {
			marker = " [winner]"
		}
		fmt.Printf("  %s: %d points (tile %d)%s\n", r.Name, r.Score, r.MaxTile, marker)
	}
	if m.IsDraw {
		fmt.Println("Result: draw")
	} else if m.Winner != nil {
		fmt.Printf("Result: %s wins\n", *m.Winner)
	}
}

// eventLine is the JSON-lines shape used with --json
type eventLine struct {
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`
}
