package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jacobterminal/earnings-terminal/internal/corpus"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load seed earnings records into the store",
	Long:  "Bulk-upserts authoritative or placeholder records from a YAML/JSON file. The confidence gate applies per record, so re-importing is idempotent.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		seedPath, _ := cmd.Flags().GetString("seed")
		if seedPath == "" {
			return eris.New("--seed is required")
		}

		env, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		recs, err := corpus.LoadSeedRecords(seedPath)
		if err != nil {
			return err
		}

		applied := env.Records.BulkUpsert(recs)
		zap.L().Info("seed import complete",
			zap.Int("loaded", len(recs)),
			zap.Int("applied", applied),
		)
		fmt.Printf("Imported %d of %d records (%d rejected by confidence gate)\n",
			applied, len(recs), len(recs)-applied)
		return nil
	},
}

func init() {
	importCmd.Flags().String("seed", "", "path to seed records file (yaml or json)")
	rootCmd.AddCommand(importCmd)
}
