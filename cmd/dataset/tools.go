package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budydeveloper/crypto-dataset/internal/csvtool"
)

var splitCmd = &cobra.Command{
	Use:   "split <input.csv> <part1.csv> <part2.csv> <part3.csv>",
	Short: "Split a CSV into three parts of near-equal size",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		sizes, err := csvtool.Split(args[0], args[1:]...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s was split into:\n", args[0])
		for i, p := range args[1:] {
			fmt.Fprintf(out, "  - %s (%d rows)\n", p, sizes[i])
		}
		return nil
	},
}

var joinCmd = &cobra.Command{
	Use:   "join <part1.csv> <part2.csv> <part3.csv> <output.csv>",
	Short: "Join three CSV files with identical headers",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := csvtool.Join(args[3], args[:3]...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s, %s and %s were joined into %s (%d rows)\n", args[0], args[1], args[2], args[3], n)
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean <file.csv>...",
	Short: "Reshape exchange exports into Date,Close,High,Low,Open,Volume",
	Long: `Reshape exchange exports into Date,Close,High,Low,Open,Volume with UTC timestamps.
Each input is written to clean_<name> unless --output is given for a single input.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output != "" && len(args) > 1 {
			return fmt.Errorf("--output needs exactly one input")
		}
		for _, in := range args {
			out := output
			if out == "" {
				out = csvtool.CleanOutputPath(in)
			}
			n, err := csvtool.Clean(in, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s saved to %s (%d rows)\n", in, out, n)
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().StringP("output", "o", "", "output path (single input only)")
	rootCmd.AddCommand(splitCmd, joinCmd, cleanCmd)
}
