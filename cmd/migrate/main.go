package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bharath13925/street-view-videos-sub000/internal/config"
	"github.com/bharath13925/street-view-videos-sub000/internal/db"
	"github.com/bharath13925/street-view-videos-sub000/internal/logging"
	"github.com/bharath13925/street-view-videos-sub000/internal/repository"
	"github.com/bharath13925/street-view-videos-sub000/internal/service"
)

var dryRun bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Maintenance for the RouteVision MongoDB database",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
			db.InitMongo(cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			db.Disconnect(ctx)
		},
	}

	rootCmd.AddCommand(routesCmd())
	rootCmd.AddCommand(indexesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func routesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Repair stored routes",
		Long: `Repair route documents written by older versions:

  - recompute pythonRouteId from start/end
  - normalise frame and video paths to frames/<route>/...
  - rebuild video.url as /api/videos/<pythonRouteId>/<filename>
  - fill a missing status
  - keep only the newest document per user and pythonRouteId, so the
    unique index can be built (run "migrate indexes" afterwards)

Examples:
  migrate routes --dry-run
  migrate routes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewMigrationService(repository.NewRouteRepository())

			sum, err := svc.RepairRoutes(cmd.Context(), dryRun)
			logging.Info().
				Int("scanned", sum.Scanned).
				Int("updated", sum.Updated).
				Int("unchanged", sum.Unchanged).
				Int("failed", sum.Failed).
				Int("removed", sum.Removed).
				Bool("dry_run", dryRun).
				Msg("[migrate] routes done")
			if err != nil {
				return fmt.Errorf("scanning routes: %w", err)
			}
			if sum.Failed > 0 {
				return fmt.Errorf("%d routes could not be updated", sum.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	return cmd
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the indexes the API queries on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// InitMongo already tried; run again to surface the error
			if err := db.EnsureIndexes(cmd.Context(), db.DB()); err != nil {
				return fmt.Errorf("creating indexes: %w", err)
			}
			logging.Info().Msg("[migrate] indexes ready")
			return nil
		},
	}
}
