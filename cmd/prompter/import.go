package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prompter/internal/ingest"
)

var importFull bool

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import markdown scripts into the script library",
		RunE:  runImport,
	}
	cmd.Flags().BoolVar(&importFull, "full", false, "Re-import every file (ignore incremental hashes)")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, presets, err := loadProject()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	result, err := ingest.Run(ctx, cfg, presets, db, ingest.Options{Full: importFull})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Import complete.")
	fmt.Fprintf(os.Stdout, "  Scripts upserted: %d\n", result.ScriptsUpserted)
	fmt.Fprintf(os.Stdout, "  Scripts removed:  %d\n", result.ScriptsRemoved)
	fmt.Fprintf(os.Stdout, "  Files skipped:    %d\n", result.FilesSkipped)

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("import completed with errors")
	}

	return nil
}
