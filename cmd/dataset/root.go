package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/budydeveloper/crypto-dataset/internal/app"
	"github.com/budydeveloper/crypto-dataset/internal/slogx"
)

var (
	// cfg is loaded from the environment before any flag is registered.
	cfg       = app.LoadConfig()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "dataset",
	Short: "dataset - maintain OHLCV candle datasets",
	Long: `dataset downloads crypto, forex and stock candles into per-ticker CSV files,
resuming from what is already stored, and ships utilities to validate, split, join,
export and load those files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("data-dir") {
			cfg.DataDir, _ = flags.GetString("data-dir")
		}
		if flags.Changed("log-level") {
			cfg.LogLevel, _ = flags.GetString("log-level")
		}
		if flags.Changed("log-file") {
			cfg.LogFile, _ = flags.GetString("log-file")
		}
		var logger *slog.Logger
		logger, logCloser = slogx.NewWithFile(cfg.LogLevel, slogx.FileOptions{Path: cfg.LogFile})
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("data-dir", cfg.DataDir, "dataset root directory (DATA_DIR)")
	pf.String("log-level", cfg.LogLevel, "debug, info, warn or error (LOG_LEVEL)")
	pf.String("log-file", cfg.LogFile, "also log to this rotating file (LOG_FILE)")
}
