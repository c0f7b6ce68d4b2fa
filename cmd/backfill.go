package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jacobterminal/earnings-terminal/internal/corpus"
	"github.com/jacobterminal/earnings-terminal/internal/model"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill [TICKER]",
	Short: "Reconcile earnings records from the news corpus",
	Long:  "Runs the ranking and extraction cascade for one (ticker, year, quarter) key, or fans out over every ticker in the corpus with --all.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		corpusPath, _ := cmd.Flags().GetString("corpus")
		if corpusPath == "" {
			return eris.New("--corpus is required")
		}
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return eris.New("TICKER argument or --all is required")
		}

		env, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		items, err := corpus.LoadNews(corpusPath)
		if err != nil {
			return err
		}

		if all {
			quarters, _ := cmd.Flags().GetInt("quarters")
			return backfillAll(cmd.Context(), env, items, quarters)
		}

		year, _ := cmd.Flags().GetInt("year")
		quarterFlag, _ := cmd.Flags().GetString("quarter")
		quarter, err := model.ParseQuarter(quarterFlag)
		if err != nil {
			return err
		}
		if year == 0 {
			return eris.New("--year is required")
		}

		applied := env.Orchestrator.RequestBackfill(cmd.Context(), args[0], year, quarter, items)
		if applied {
			fmt.Printf("Backfill applied a record for %s\n", model.RecordKey(args[0], year, quarter))
		} else {
			fmt.Printf("Backfill made no change for %s\n", model.RecordKey(args[0], year, quarter))
		}
		return nil
	},
}

// backfillAll fans one attempt per (ticker, quarter) key out over a
// bounded worker group. Per-key exclusivity is the orchestrator's job;
// the group limit only bounds total parallelism.
func backfillAll(ctx context.Context, e *env, items []model.NewsItem, quarters int) error {
	tickers := corpusTickers(items)
	keys := recentQuarters(time.Now(), quarters)

	var limiter *rate.Limiter
	if cfg.Backfill.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Backfill.RatePerSecond), 1)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Backfill.MaxConcurrent)

	var applied int64
	results := make(chan bool, len(tickers)*len(keys))
	for _, ticker := range tickers {
		for _, key := range keys {
			ticker, key := ticker, key
			g.Go(func() error {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return err
					}
				}
				results <- e.Orchestrator.RequestBackfill(ctx, ticker, key.year, key.quarter, items)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "backfill: fan-out")
	}
	close(results)
	for ok := range results {
		if ok {
			applied++
		}
	}

	zap.L().Info("bulk backfill complete",
		zap.Int("tickers", len(tickers)),
		zap.Int("quarters", len(keys)),
		zap.Int64("applied", applied),
	)
	fmt.Printf("Backfill complete: %d records applied across %d tickers\n", applied, len(tickers))
	return nil
}

type quarterKey struct {
	year    int
	quarter model.Quarter
}

// recentQuarters returns the n most recent calendar quarters ending at now,
// newest first.
func recentQuarters(now time.Time, n int) []quarterKey {
	if n <= 0 {
		n = 4
	}
	year := now.Year()
	ordinal := int(now.Month()-1)/3 + 1

	keys := make([]quarterKey, 0, n)
	for i := 0; i < n; i++ {
		q, _ := model.QuarterFromOrdinal(ordinal)
		keys = append(keys, quarterKey{year: year, quarter: q})
		ordinal--
		if ordinal == 0 {
			ordinal = 4
			year--
		}
	}
	return keys
}

// corpusTickers returns the distinct tickers mentioned in the corpus.
func corpusTickers(items []model.NewsItem) []string {
	seen := make(map[string]struct{})
	for _, item := range items {
		for _, t := range item.Tickers {
			seen[t] = struct{}{}
		}
	}
	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

func init() {
	backfillCmd.Flags().String("corpus", "", "path to news corpus file (yaml or json)")
	backfillCmd.Flags().Int("year", 0, "fiscal year")
	backfillCmd.Flags().String("quarter", "", "fiscal quarter (Q1-Q4)")
	backfillCmd.Flags().Bool("all", false, "backfill every ticker in the corpus")
	backfillCmd.Flags().Int("quarters", 4, "how many trailing quarters to cover with --all")
	rootCmd.AddCommand(backfillCmd)
}
