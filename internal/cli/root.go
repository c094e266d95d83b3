// Package cli implements the envdash command-line shell.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/envdash/internal/core"
	"github.com/JonMunkholm/envdash/internal/logging"
)

const defaultDataPath = "clean_environment_lka.csv"

// NewCommand returns the root envdash command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envdash",
		Short: "Explore a country's environmental indicators from the terminal",
		Long: `envdash loads a World Bank style indicator CSV, keeps the rows of one
country and shows each indicator's values, trend and summary statistics.

Quick start:
  envdash indicators                     # List indicators with row counts
  envdash show "Forest area (% of land area)"
  envdash export "Forest area (% of land area)" -o forest.csv`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogging,
	}

	cmd.PersistentFlags().String("data", envOr("DATA_PATH", defaultDataPath), "Indicator CSV file (env DATA_PATH)")
	cmd.PersistentFlags().String("country", envOr("DATA_COUNTRY", core.DefaultCountry), "Country to keep (env DATA_COUNTRY)")
	cmd.PersistentFlags().String("log-level", envOr("LOG_LEVEL", "warn"), "Log level: debug, info, warn, error")

	cmd.AddCommand(IndicatorsCommand())
	cmd.AddCommand(ShowCommand())
	cmd.AddCommand(ExportCommand())

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging sends logs to stderr so command output stays clean.
func setupLogging(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, "text"))
	return nil
}

// newService builds a service from the persistent flags.
func newService(cmd *cobra.Command, policy core.DuplicateYears) *core.Service {
	path, _ := cmd.Flags().GetString("data")
	country, _ := cmd.Flags().GetString("country")
	return core.NewService(core.ServiceConfig{
		Path:           path,
		Country:        country,
		DuplicateYears: policy,
	}, nil, nil)
}

// reportError prints the user-facing message for err to stderr and returns
// it as a *core.UserError so the command exits non-zero. Errors without a
// specific message also print the technical detail.
func reportError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", core.FormatUserError(err))
	if !core.IsUserFacing(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Details: %v\n", err)
	}
	return core.NewUserError(err)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
