package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recordsCmd = &cobra.Command{
	Use:   "records TICKER",
	Short: "List reconciled earnings records for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		year, _ := cmd.Flags().GetInt("year")
		recs := env.Records.ListForTicker(args[0], year)
		if len(recs) == 0 {
			fmt.Printf("No records for %s\n", args[0])
			return nil
		}

		for _, rec := range recs {
			fmt.Printf("%-18s eps=%-8s revenue=%-14s %-7s %-8s %-14s conf=%.2f\n",
				rec.Key(), fmtFloat(rec.ActualEPS, "%.2f"), fmtFloat(rec.RevenueUSD, "%.0f"),
				rec.Result, rec.Session, rec.Source, rec.Confidence)
		}
		return nil
	},
}

func fmtFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop records older than the retention window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		keep, _ := cmd.Flags().GetInt("keep-years")
		if keep == 0 {
			keep = cfg.Backfill.RetentionYears
		}

		removed := env.Records.Prune(keep)
		fmt.Printf("Pruned %d records older than %d fiscal years\n", removed, keep)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store and backfill counters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		st := env.Orchestrator.Stats()
		fmt.Printf("Records:            %d\n", env.Records.Count())
		fmt.Printf("Attempted keys:     %d\n", st.Attempts)
		fmt.Printf("Succeeded attempts: %d\n", st.Succeeded)
		fmt.Printf("News index version: %d\n", st.IndexVersion)
		return nil
	},
}

func init() {
	recordsCmd.Flags().Int("year", 0, "limit to one fiscal year")
	pruneCmd.Flags().Int("keep-years", 0, "fiscal years to keep (default from config)")
	rootCmd.AddCommand(recordsCmd, pruneCmd, statusCmd)
}
