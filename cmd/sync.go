package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobo-ai/jobo-go/jobo"
	"github.com/jobo-ai/jobo-go/mirror"
	"github.com/jobo-ai/jobo-go/store"
)

var (
	syncDBPath  string
	syncSources []string
	syncBatch   int
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the job feed into a local SQLite database",
	Long: `Mirror the job feed into a local SQLite database. Every run upserts the
whole feed, then deletes jobs that expired since the previous run (at most
seven days back) and records a checkpoint for the next run.`,
	PreRunE: initializeApp,
	RunE:    runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncDBPath, "db", "", "database path (default store.path from config)")
	syncCmd.Flags().StringSliceVar(&syncSources, "source", nil, "only mirror jobs from these sources")
	syncCmd.Flags().IntVar(&syncBatch, "batch-size", jobo.DefaultBatchSize, "jobs per feed request")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path := cfg.Store.Path
	if syncDBPath != "" {
		path = syncDBPath
	}

	db, err := store.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to open mirror: %w", err)
	}
	defer db.Close()

	syncer := mirror.NewSyncer(client.Feed, db,
		mirror.WithRequest(jobo.JobFeedRequest{Sources: syncSources, BatchSize: syncBatch}),
		mirror.WithLogger(logger),
	)

	logger.Info().Str("db", path).Msg("Syncing job feed")
	stats, err := syncer.Run(ctx)
	if err != nil {
		logger.Error().Int("upserted", stats.Upserted).Int64("deleted", stats.Deleted).Msg("Sync interrupted")
		return err
	}

	total, err := db.Count(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{
			"upserted":      stats.Upserted,
			"deleted":       stats.Deleted,
			"expired_since": stats.ExpiredSince,
			"total":         total,
		})
	}
	fmt.Fprintf(out, "✓ Upserted %s, removed %s expired, %s mirrored in %s\n",
		plural(stats.Upserted, "job"), plural(int(stats.Deleted), "job"), plural(int(total), "job"), stats.Duration.Round(time.Millisecond))
	return nil
}
