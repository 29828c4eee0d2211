package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/leaderboard"
			if limit > 0 {
				path = fmt.Sprintf("%s?limit=%d", path, limit)
			}

			var result Leaderboard
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of entries (default: server default)")

	return cmd
}

func newResultCmd() *cobra.Command {
	var score, maxTile, moves int
	var won bool

	cmd := &cobra.Command{
		Use:   "result",
		Short: "Submit a finished game result",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"score":   score,
				"maxTile": maxTile,
				"moves":   moves,
				"won":     won,
			}

			var result Result
			if err := client.Post("/api/v1/results", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&score, "score", 0, "Final score (required)")
	cmd.Flags().IntVar(&maxTile, "max-tile", 0, "Highest tile reached")
	cmd.Flags().IntVar(&moves, "moves", 0, "Number of moves made")
	cmd.Flags().BoolVar(&won, "won", false, "Whether the game was won")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}
