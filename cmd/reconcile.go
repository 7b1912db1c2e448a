/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mediavault/apiserver/config"
	"github.com/mediavault/apiserver/internal/db"
	"github.com/mediavault/apiserver/internal/services"
	"github.com/mediavault/apiserver/internal/storage"
	"github.com/mediavault/apiserver/internal/store"
	"github.com/spf13/cobra"
)

var (
	reconcileGrace  time.Duration
	reconcileDryRun bool
)

// reconcileCmd represents the reconcile command.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Delete stored objects that no database row references",
	Long: `Scans the object store and removes files that neither a media
asset nor a profile avatar points at. Uploads and deletes do not span
the object store and the database transactionally, so failed flows
leave objects behind; this sweep cleans them up. Objects newer than
the grace window are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		logger := newLogger()
		defer func() {
			_ = logger.Sync()
		}()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() {
			_ = dbConn.Close()
		}()

		objStorage, err := newReconcileStorage(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect storage: %w", err)
		}

		mediaRepo := store.NewMediaRepository(dbConn)
		profileRepo := store.NewProfileRepository(dbConn)

		reconciler := services.NewReconcileService(objStorage, logger.Sugar(),
			func(ctx context.Context) ([]string, error) { return mediaRepo.ListFileURLs(ctx) },
			func(ctx context.Context) ([]string, error) { return profileRepo.ListAvatarURLs(ctx) },
		)

		report, err := reconciler.Sweep(cmd.Context(), reconcileGrace, reconcileDryRun)
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}

		cmd.Printf("scanned %d objects, %d orphans, %d deleted\n",
			report.Scanned, len(report.Orphans), report.Deleted)
		for _, key := range report.Orphans {
			cmd.Printf("orphan: %s\n", key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().DurationVar(&reconcileGrace, "grace", 24*time.Hour, "skip objects newer than this window")
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "report orphans without deleting them")
}

func newReconcileStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.StorageBackend {
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case "", "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
