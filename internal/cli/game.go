package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameAddPlayerCmd())
	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameEntryCmd())
	cmd.AddCommand(newGameBuyInCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameEndCmd())
	cmd.AddCommand(newGameCashOutCmd())
	cmd.AddCommand(newGameArchiveCmd())
	cmd.AddCommand(newGamePredictCmd())
	cmd.AddCommand(newGameWatchCmd())

	return cmd
}

func gamePath(id, suffix string) string {
	return fmt.Sprintf("/api/v1/games/%s%s", url.PathEscape(id), suffix)
}

// postGame posts req to a game endpoint and prints the returned game
func postGame(cmd *cobra.Command, id, suffix string, req any) error {
	var result Game
	if err := client.Post(gamePath(id, suffix), req, &result); err != nil {
		return err
	}
	NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
	return nil
}

func newGameCreateCmd() *cobra.Command {
	var buyIn string

	cmd := &cobra.Command{
		Use:   "create <player>...",
		Short: "Create a game with the given players",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"players": args, "buy_in": buyIn}
			var result Game

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&buyIn, "buy-in", "", "Buy-in unit (default: server setting)")
	return cmd
}

func newGameListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameList
			if err := client.Get("/api/v1/games?limit="+strconv.Itoa(limit), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum games to list (0 for all)")
	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a game's ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Get(gamePath(args[0], ""), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameAddPlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-player <id> <player>",
		Short: "Add a player before the game starts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postGame(cmd, args[0], "/players", map[string]string{"player": args[1]})
		},
	}
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Start the game and its clock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postGame(cmd, args[0], "/start", nil)
		},
	}
}

func newGameEntryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entry <id> <kind> <from> <to> [amount]",
		Short: "Record a raw ledger entry",
		Long: `Record a raw ledger entry. Kinds: initial-buy-in, buy-in,
in-game-cash-out, cash-out, player-joined, game-over, exit.
Use BANK for the house.`,
		Args: cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"kind": args[1], "from": args[2], "to": args[3]}
			if len(args) == 5 {
				req["amount"] = args[4]
			}
			return postGame(cmd, args[0], "/entries", req)
		},
	}
}

func newGameBuyInCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "buy-in <id> <player> <amount>",
		Short: "Record a buy-in paid to a player",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"kind": "buy-in", "from": from, "to": args[1], "amount": args[2]}
			return postGame(cmd, args[0], "/entries", req)
		},
	}

	cmd.Flags().StringVar(&from, "from", "BANK", "Who funds the buy-in")
	return cmd
}

func newGameJoinCmd() *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "join <id> <player>",
		Short: "Add a late player funded by the bank",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postGame(cmd, args[0], "/join", map[string]string{"player": args[1], "amount": amount})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Buy-in amount (default: the game's buy-in unit)")
	return cmd
}

func newGameEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <id>",
		Short: "Record game over and stop the clock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postGame(cmd, args[0], "/end", nil)
		},
	}
}

func newGameCashOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cash-out <id> <player> <amount>",
		Short: "Record or revise a player's final cash-out",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postGame(cmd, args[0], "/cash-out", map[string]string{"player": args[1], "amount": args[2]})
		},
	}
}

func newGameArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Settle the game and update player statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ArchiveResult
			if err := client.Post(gamePath(args[0], "/archive"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGamePredictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict <id>",
		Short: "Predict each player's final profit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Prediction
			if err := client.Get(gamePath(args[0], "/predictions"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <id>",
		Short: "Follow a game's live updates until it is archived",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			return client.Stream(gamePath(args[0], "/events"), func(event, data string) {
				out.PrintEvent(event, data)
			})
		},
	}
}
