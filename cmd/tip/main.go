package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/tip/am"
	"github.com/teranos/tip/cmd/tip/commands"
	"github.com/teranos/tip/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tip",
	Short: "tip - tooltip engine and scenario simulator",
	Long: `tip - tooltip engine and scenario simulator.

tip attaches tooltips to elements of a host document and drives them through
their show and hide lifecycle. The CLI inspects configuration and replays
scenario files against the engine.

Available commands:
  am       - Manage tip configuration ("I am")
  simulate - Replay a scenario file and print every phase change
  version  - Show build information

Examples:
  tip am show                         # Show current configuration
  tip simulate hover.toml             # Replay in virtual time
  tip simulate hover.toml --watch     # Replay again on every save
  tip simulate hover.toml --json      # Machine-readable result`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 'am show' prints config to stdout; keep it free of log noise
		if cmd.Name() == "show" {
			return nil
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if cfg, err := am.Load(); err == nil {
			jsonLogs = jsonLogs || cfg.Log.JSON
			logger.SetTheme(cfg.GetLogTheme())
		}
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.SimulateCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
