package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"dataset-builder/internal/config"
	"dataset-builder/internal/export"
	"dataset-builder/internal/scanner"
	"dataset-builder/internal/server"
	"dataset-builder/internal/store"
	"dataset-builder/internal/viewer"
)

var (
	imageDir  string
	outputDir string
	port      int
	scanOnly  bool
	exportDB  string
)

// rootCmd scans an image directory into an annotated dataset and
// serves the annotation viewer for it.
var rootCmd = &cobra.Command{
	Use:   "dataset-builder",
	Short: "Build and annotate image datasets in the browser",
	Long: `dataset-builder scans a directory of images into a JSON dataset,
generates a self-contained HTML annotation viewer and serves it on
localhost. Edits made in the browser are saved back to the dataset
file; the Refresh Dataset button picks up newly added images without
restarting the tool.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.SetupLogging()

		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}

		st := store.Open(filepath.Join(outputDir, cfg.DataFileName))
		sc := scanner.New(imageDir, outputDir, st)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		added, err := sc.Scan(ctx)
		if err != nil {
			return fmt.Errorf("initial scan: %w", err)
		}
		slog.Info("initial scan complete", "new_items", added, "total_items", st.Len())

		if err := viewer.Generate(outputDir, st.Snapshot()); err != nil {
			return fmt.Errorf("generate viewer page: %w", err)
		}

		// Export mode replaces serving entirely.
		if exportDB != "" {
			if err := export.ToSQLite(exportDB, st.Snapshot()); err != nil {
				return fmt.Errorf("export to sqlite: %w", err)
			}
			slog.Info("exported dataset to sqlite", "path", exportDB)
			return nil
		}

		if scanOnly {
			slog.Info("scan-only mode, not starting server")
			return nil
		}

		srv := server.New(st, sc, outputDir, server.Options{
			Port:            port,
			MonitorInterval: cfg.MonitorInterval,
			ShutdownDelay:   cfg.ShutdownDelay,
		})
		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		slog.Info("server stopped")
		return nil
	},
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&imageDir, "image-dir", "", "Directory of source images to scan (required)")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for the dataset, viewer page and copied images (required)")
	rootCmd.Flags().IntVar(&port, "port", 8000, "Port to serve the viewer on; busy ports are skipped upward")
	rootCmd.Flags().BoolVar(&scanOnly, "scan-only", false, "Scan and generate the page, then exit without serving")
	rootCmd.Flags().StringVar(&exportDB, "export-db", "", "Export the dataset to a SQLite database at this path instead of serving")
	_ = rootCmd.MarkFlagRequired("image-dir")
	_ = rootCmd.MarkFlagRequired("output-dir")
}
