package main

import (
	"fmt"
	"os"

	"github.com/quantedge/quantedge/internal/config"
	"github.com/quantedge/quantedge/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "quantedge",
	Short: "QuantEdge - simulation settings service for the backtest dashboard",
	Long: `QuantEdge holds the strategy simulation settings edited on the dashboard,
persists them on apply and forwards runs to the backtest service.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// loadConfig reads --config, or falls back to defaults when none is given.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	if cfgFile != "" {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// configuredLogger rebuilds the logger with the configured level. --debug
// always wins.
func configuredLogger(cfg *config.Config) (*zap.Logger, error) {
	opts := logger.Options{
		Development: debug || cfg.Server.Mode == "debug",
		Level:       cfg.Log.Level,
	}
	if debug {
		opts.Level = "debug"
	}
	return logger.Build(opts)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
