package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg        *Config
	configPath string

	cfgFile     string
	dialectFlag string
	verbose     int
)

var rootCmd = &cobra.Command{
	Use:   "typeq",
	Short: "Typed SQL query construction",
	Long: `typeq - typed SQL query construction

Renders the statements the typeq builders produce for each supported
dialect, and runs them against a live database from an interactive shell.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, configPath, err = LoadConfig(cfgFile)
		if err != nil {
			return configError("loading configuration", err)
		}
		if dialectFlag != "" {
			cfg.Dialect = dialectFlag
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover typeq.yaml)")
	rootCmd.PersistentFlags().StringVarP(&dialectFlag, "dialect", "d", "", "SQL dialect (ansi, postgres, mysql, sqlite)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (can be repeated)")

	rootCmd.AddCommand(renderCmd, capabilitiesCmd, replCmd, configCmd)
}

// newLogger returns a stderr logger at the level chosen by -v.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose >= 2:
		level = slog.LevelDebug
	case verbose == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		exitWithError(err)
	}
}
