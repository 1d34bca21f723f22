package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	nbmongo "github.com/dmitrymomot/noticeboard/pkg/mongo"
)

func migrateCmd(envFiles *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the MongoDB indexes for users, posts and sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFiles)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			db, err := connectMongo(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = db.Client().Disconnect(ctx)
			}()

			sets := indexSets(cfg)
			if err := nbmongo.EnsureIndexes(cmd.Context(), db, sets...); err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}
			for _, s := range sets {
				log.Info("indexes ensured", "collection", s.Collection, "count", len(s.Models))
			}
			return nil
		},
	}
}
