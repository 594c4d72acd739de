package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "tmh",
		Short: "CLI tool for the TrackMyHand ledger API",
		Long: `tmh is a CLI tool for the TrackMyHand poker ledger JSON API.

It creates and runs games, records buy-ins and cash-outs, controls game
clocks, settles and archives games, and reads player statistics.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.PIN)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: TMH_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.PIN, "pin", cfg.PIN, "Profile PIN for protected user commands (env: TMH_PIN)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newClockCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
