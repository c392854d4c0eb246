package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/budydeveloper/crypto-dataset/internal/dataset"
	"github.com/budydeveloper/crypto-dataset/internal/saver"
	"github.com/budydeveloper/crypto-dataset/internal/store/postgres"
)

var exportCmd = &cobra.Command{
	Use:   "export <dataset.csv>",
	Short: "Convert a dataset file to csv, json or parquet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		format := cfg.ExportFormat
		if flags.Changed("format") {
			format, _ = flags.GetString("format")
		}
		gz, _ := flags.GetBool("gzip")
		s, err := saver.NewPacketSaver(format, gz)
		if err != nil {
			return err
		}

		candles, err := dataset.Load(args[0])
		if err != nil {
			return err
		}
		out, _ := flags.GetString("output")
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".export." + s.Extension()
		}
		if err := s.Save(saver.FromCandles(candles), out); err != nil {
			return fmt.Errorf("export %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d rows written to %s\n", len(candles), out)
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <dataset.csv>",
	Short: "Load a dataset file into PostgreSQL",
	Long: `Apply the schema migrations and insert the rows of a dataset file into the candles
table. Rows whose (ticker, interval, timestamp) already exist are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		url := cfg.PostgresURL
		if flags.Changed("postgres-url") {
			url, _ = flags.GetString("postgres-url")
		}
		if url == "" {
			return fmt.Errorf("set POSTGRES_URL or --postgres-url")
		}
		ticker, _ := flags.GetString("ticker")
		interval, _ := flags.GetString("interval")
		if ticker == "" || interval == "" {
			t, iv, ok := parseDatasetName(args[0])
			if !ok {
				return fmt.Errorf("cannot derive ticker and interval from %s; use --ticker and --interval", args[0])
			}
			if ticker == "" {
				ticker = t
			}
			if interval == "" {
				interval = iv
			}
		}

		candles, err := dataset.Load(args[0])
		if err != nil {
			return err
		}
		if err := postgres.Migrate(url); err != nil {
			return err
		}
		n, err := postgres.Load(context.Background(), url, ticker, interval, candles)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d rows inserted for %s %s\n", n, len(candles), ticker, interval)
		return nil
	},
}

// parseDatasetName splits TICKER_interval.csv.
func parseDatasetName(path string) (ticker, interval string, ok bool) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	i := strings.LastIndex(base, "_")
	if i <= 0 || i == len(base)-1 {
		return "", "", false
	}
	return base[:i], base[i+1:], true
}

func init() {
	ef := exportCmd.Flags()
	ef.String("format", cfg.ExportFormat, "csv, json or parquet (EXPORT_FORMAT)")
	ef.Bool("gzip", false, "gzip csv or json output")
	ef.StringP("output", "o", "", "output path (default: <input>.export.<ext>)")

	lf := loadCmd.Flags()
	lf.String("postgres-url", cfg.PostgresURL, "database URL (POSTGRES_URL)")
	lf.String("ticker", "", "ticker (default: from the file name)")
	lf.String("interval", "", "interval (default: from the file name)")

	rootCmd.AddCommand(exportCmd, loadCmd)
}
