package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/sflowg/campaignmonitor/cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
	logLevel   string

	hostConfig *config.HostConfig
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sflowg-cm",
	Short: "Campaign Monitor node for the sflowg runtime",
	Long: `sflowg-cm runs the Campaign Monitor node: subscriber management, campaign
listing and sending, and transactional smart emails.

Workflows are YAML files naming the node, its parameters and the items to
process. They can be run once from the command line or served over HTTP.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "host config file (default is ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config is read")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(operationsCmd)
	rootCmd.AddCommand(serveCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	// A missing .env file is fine, a malformed one is not.
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	l, err := newLogger(logLevel)
	if err != nil {
		return err
	}
	logger = l
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	hostConfig = cfg
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}
