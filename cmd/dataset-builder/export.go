package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dataset-builder/internal/export"
	"dataset-builder/internal/store"
)

var (
	exportDatasetFile string
	exportOutputFile  string
	includeImagePaths bool
)

var exportCSVCmd = &cobra.Command{
	Use:   "export-csv",
	Short: "Export a dataset JSON file to CSV",
	Long: `export-csv reads a dataset JSON file and writes it as CSV, one row
per item with a column per shared attribute. Attributes an item has no
value for become empty cells.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(exportDatasetFile); err != nil {
			return fmt.Errorf("dataset file: %w", err)
		}
		st := store.Open(exportDatasetFile)

		if err := export.ToCSV(exportOutputFile, st.Snapshot(), export.CSVOptions{
			IncludeImagePaths: includeImagePaths,
		}); err != nil {
			return err
		}
		fmt.Printf("Exported %d items to %s\n", st.Len(), exportOutputFile)
		return nil
	},
}

func init() {
	exportCSVCmd.Flags().StringVar(&exportDatasetFile, "dataset-file", "", "Dataset JSON file to export (required)")
	exportCSVCmd.Flags().StringVar(&exportOutputFile, "output-file", "", "CSV file to write (required)")
	exportCSVCmd.Flags().BoolVar(&includeImagePaths, "include-image-paths", false, "Include the image_path column")
	_ = exportCSVCmd.MarkFlagRequired("dataset-file")
	_ = exportCSVCmd.MarkFlagRequired("output-file")

	rootCmd.AddCommand(exportCSVCmd)
}
