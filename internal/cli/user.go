package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Player profile commands",
	}

	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserListCmd())
	cmd.AddCommand(newUserGetCmd())
	cmd.AddCommand(newUserSummaryCmd())
	cmd.AddCommand(newUserFavoriteCmd())
	cmd.AddCommand(newUserSetPINCmd())

	return cmd
}

func userPath(id, suffix string) string {
	return fmt.Sprintf("/api/v1/users/%s%s", url.PathEscape(id), suffix)
}

func printUser(cmd *cobra.Command, u User) {
	NewOutput(cfg.Output, cmd.OutOrStdout()).Print(u)
}

func newUserCreateCmd() *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "create <id>",
		Short: "Create a profile, optionally PIN-protected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"id": args[0]}
			if cmd.Flags().Changed("new-pin") {
				req["pin"] = pin
			}

			var result User
			if err := client.Post("/api/v1/users", req, &result); err != nil {
				return err
			}
			printUser(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "new-pin", "", "PIN protecting the profile (3-10 characters)")
	return cmd
}

func newUserListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles by total profit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result UserList
			if err := client.Get("/api/v1/users?limit="+strconv.Itoa(limit), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum profiles to list (0 for all)")
	return cmd
}

func newUserGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result User
			if err := client.Get(userPath(args[0], ""), &result); err != nil {
				return err
			}
			printUser(cmd, result)
			return nil
		},
	}
}

func newUserSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <id>",
		Short: "Show a profile's derived statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Summary
			if err := client.Get(userPath(args[0], "/summary"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newUserFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle a profile's favorite flag (needs --pin if protected)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result User
			if err := client.Post(userPath(args[0], "/favorite"), nil, &result); err != nil {
				return err
			}
			printUser(cmd, result)
			return nil
		},
	}
}

func newUserSetPINCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-pin <id> [new-pin]",
		Short: "Change a profile's PIN; omit new-pin to remove it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"new_pin": ""}
			if len(args) == 2 {
				req["new_pin"] = args[1]
			}

			var result User
			if err := client.Put(userPath(args[0], "/pin"), req, &result); err != nil {
				return err
			}
			printUser(cmd, result)
			return nil
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the most profitable players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/leaderboard"
			if limit > 0 {
				path += "?limit=" + strconv.Itoa(limit)
			}

			var result []LeaderboardEntry
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of players (default: server setting)")
	return cmd
}
