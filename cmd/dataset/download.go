package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/budydeveloper/crypto-dataset/internal/app"
	"github.com/budydeveloper/crypto-dataset/internal/plan"
)

var downloadCmd = &cobra.Command{
	Use:   "download [profile]",
	Short: "Download or update the datasets of a market profile",
	Long: `Download every interval of a market profile for each ticker in its tickers file.
Existing files are extended, never truncated. Failed intervals are logged and reported in
.lastrun.failed.json; they do not change the exit code.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.Profile = args[0]
		}
		flags := cmd.Flags()
		if flags.Changed("tickers-file") {
			cfg.TickersFile, _ = flags.GetString("tickers-file")
		}
		if flags.Changed("at") {
			cfg.RunAt, _ = flags.GetString("at")
		}
		if flags.Changed("profiles-file") {
			cfg.PlansFile, _ = flags.GetString("profiles-file")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		d, cleanup, err := InitializeDownloader(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize downloader: %w", err)
		}
		defer cleanup()

		names, _ := flags.GetStringSlice("intervals")
		intervals, err := d.Profile.Select(names)
		if err != nil {
			return err
		}
		tickerList, err := app.LoadTickers(cfg, d.Profile)
		if err != nil {
			return fmt.Errorf("failed to get tickers: %w", err)
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
		slog.Info("using data provider", "provider", d.DP.GetName(), "profile", d.Profile.Name,
			"tickers", len(tickerList), "dir", cfg.DataDir)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		report := app.RunFlow(ctx, cfg, d.Runner, tickerList, intervals)
		success, failed := report.Counts()
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d ok, %d failed\n", report.RunID, success, failed)
		return nil
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List market profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("profiles-file")
		if path == "" {
			path = cfg.PlansFile
		}
		doc, err := plan.Load(path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range doc.Names() {
			p := doc.Profiles[name]
			ivs := make([]string, 0, len(p.Intervals))
			for _, ip := range p.Intervals {
				ivs = append(ivs, ip.Name+":"+ip.Mode)
			}
			sort.Strings(ivs)
			fmt.Fprintf(out, "%-16s %-8s %-12s %s\n", name, p.Provider, p.TickersFile, strings.Join(ivs, " "))
		}
		return nil
	},
}

func init() {
	f := downloadCmd.Flags()
	f.StringSlice("intervals", nil, "only these intervals, e.g. 1m,1d (default: all of the profile)")
	f.String("tickers-file", cfg.TickersFile, "tickers file overriding the profile's (TICKERS_FILE)")
	f.String("at", cfg.RunAt, "repeat daily at this UTC time, HH:MM (RUN_AT)")
	f.String("profiles-file", cfg.PlansFile, "YAML profiles file (PLANS_FILE)")
	profilesCmd.Flags().String("profiles-file", "", "YAML profiles file (PLANS_FILE)")

	rootCmd.AddCommand(downloadCmd, profilesCmd)
}
