package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/budydeveloper/crypto-dataset/internal/validate"
)

// errValidationFailed makes the process exit non-zero once results are printed.
var errValidationFailed = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate dataset CSV files",
	Long: `Validate the named files, or every file matching --pattern in the current directory.
Exits non-zero if any file has errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		files := args
		if len(files) == 0 {
			pattern, _ := flags.GetString("pattern")
			var err error
			if files, err = validate.Discover(pattern); err != nil {
				return err
			}
		}
		if len(files) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No CSV files found to validate.")
			return nil
		}

		layout, _ := flags.GetString("layout")
		extra, _ := flags.GetInt("extra-columns")
		results, err := validate.Files(files, validate.Options{Layout: layout, ExtraColumns: extra})
		if err != nil {
			return err
		}
		validate.Print(cmd.OutOrStdout(), results)

		if report, _ := flags.GetString("report"); report != "" {
			f, err := os.Create(report)
			if err != nil {
				return err
			}
			if err := validate.WriteJSON(f, results, time.Now()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
		if validate.Failed(results) {
			return errValidationFailed
		}
		return nil
	},
}

func init() {
	f := validateCmd.Flags()
	f.String("pattern", "*.csv", "glob used when no files are given")
	f.String("layout", validate.LayoutAuto, "expected header: auto, ohlcv or binance")
	f.Int("extra-columns", 0, "trailing columns accepted after the expected header")
	f.String("report", "", "also write a JSON report to this path")
	rootCmd.AddCommand(validateCmd)
}
