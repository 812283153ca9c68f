package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mamacare/mamacare-api/internal/seed"
	"github.com/mamacare/mamacare-api/internal/store"
	"github.com/mamacare/mamacare-api/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace clinics, milestones and guidance with the bundled content",
	Long: `Loads the bundled YAML content and replaces the clinics, pregnancy
milestones and guidance collections. Accounts and user data are untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, closeDB, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer closeDB()
		if err := seedContent(ctx, db); err != nil {
			return err
		}
		return nil
	},
}

func seedContent(ctx context.Context, db store.Database) error {
	data, err := seed.Load()
	if err != nil {
		return err
	}
	sum, err := seed.Seed(ctx, db, data, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d clinics, %d milestones, %d guidance entries\n", sum.Clinics, sum.Milestones, sum.Guidance)
	return nil
}

// seedIfEmpty loads the bundled content when no milestones are stored yet,
// which covers the in-memory store and a fresh MongoDB database.
func seedIfEmpty(ctx context.Context, db store.Database) (bool, error) {
	n, err := db.Collection(store.Milestones).Count(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("count milestones: %w", err)
	}
	if n > 0 {
		logger.Debugf("seed: %d milestones present, skipping", n)
		return false, nil
	}
	if err := seedContent(ctx, db); err != nil {
		return false, err
	}
	return true, nil
}
