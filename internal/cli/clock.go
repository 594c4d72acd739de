package cli

import (
	"github.com/spf13/cobra"
)

func newClockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clock",
		Short: "Game clock commands",
	}

	cmd.AddCommand(newClockActionCmd("show", "Show a game's clock", ""))
	cmd.AddCommand(newClockActionCmd("start", "Start a game's clock", "/start"))
	cmd.AddCommand(newClockActionCmd("pause", "Pause a game's clock", "/pause"))
	cmd.AddCommand(newClockActionCmd("resume", "Resume a paused clock", "/resume"))

	return cmd
}

// newClockActionCmd builds a clock command. An empty action reads the clock.
func newClockActionCmd(use, short, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Clock
			path := gamePath(args[0], "/clock"+action)

			var err error
			if action == "" {
				err = client.Get(path, &result)
			} else {
				err = client.Post(path, nil, &result)
			}
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
