package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/radup/fin-good/internal/cli"
	"github.com/radup/fin-good/internal/common"
	"github.com/radup/fin-good/internal/importer"
	"github.com/radup/fin-good/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// fileParser is implemented by both importer formats.
type fileParser interface {
	Parse(ctx context.Context, reader io.Reader, userID, batchID string) ([]model.Transaction, error)
}

func importCmd() *cobra.Command {
	var (
		format  string
		dryRun  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from bank export files",
		Long: `Import financial transactions from CSV or OFX/QFX files exported from
your bank. Transactions are deduplicated automatically and stored
uncategorized; run 'fingood categorize' afterwards.

Examples:
  # Import a CSV export
  fingood import --user alice ~/Downloads/checking_jan.csv

  # Import all QFX files in a directory
  fingood import --user alice --format ofx ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args, format, dryRun, verbose)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "file format (csv, ofx)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show each imported transaction")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "preview import without saving")

	return cmd
}

func runImport(ctx context.Context, args []string, format string, dryRun, verbose bool) error {
	userID, err := currentUser()
	if err != nil {
		return err
	}

	var parser fileParser
	switch strings.ToLower(format) {
	case "csv":
		parser = importer.NewCSVParser()
	case "ofx", "qfx":
		parser = importer.NewOFXParser()
	default:
		return fmt.Errorf("unknown import format %q", format)
	}

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	batchID := uuid.NewString()

	slog.Info("Importing files",
		"file_count", len(allFiles),
		"batch", batchID,
		"dry_run", dryRun)

	bar := progressbar.NewOptions(len(allFiles),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing files..."),
	)

	// Track all transactions across files, deduplicating by hash.
	var allTransactions []model.Transaction
	seen := make(map[string]bool)

	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			_ = bar.Add(1)
			continue
		}

		transactions, err := parser.Parse(ctx, f, userID, batchID)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse file", "file", filePath, "error", err)
			_ = bar.Add(1)
			continue
		}

		for _, txn := range transactions {
			if !seen[txn.Hash] {
				seen[txn.Hash] = true
				allTransactions = append(allTransactions, txn)
			}
		}
		_ = bar.Add(1)
	}
	fmt.Fprintln(os.Stderr)

	if verbose {
		for _, txn := range allTransactions {
			fmt.Printf("%s  %9.2f  %-30s %s\n",
				txn.Date.Format("2006-01-02"), txn.Amount, txn.Vendor, txn.Description)
		}
	}

	if len(allTransactions) == 0 {
		return fmt.Errorf("%w: nothing usable in %d file(s)", common.ErrNoTransactions, len(allFiles))
	}

	if dryRun {
		fmt.Println(cli.InfoStyle.Render(
			fmt.Sprintf("Dry run: would import %d transaction(s) in batch %s", len(allTransactions), batchID)))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	saved, err := store.SaveTransactions(ctx, allTransactions)
	if err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	skipped := len(allTransactions) - saved
	fmt.Println(cli.SuccessStyle.Render(
		fmt.Sprintf("Imported %d transaction(s) in batch %s (%d duplicate(s) skipped)", saved, batchID, skipped)))

	return nil
}
