// cpe-batch ingests a directory of certificates into a local SQLite
// database and writes an XLSX export, without running the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"log/slog"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/compliance"
	"github.com/supercpe/cpe-tracker/internal/entity"
	"github.com/supercpe/cpe-tracker/internal/export"
	"github.com/supercpe/cpe-tracker/internal/extract"
	"github.com/supercpe/cpe-tracker/internal/ingest"
	"github.com/supercpe/cpe-tracker/internal/ocr"
	"github.com/supercpe/cpe-tracker/internal/rules"
	"github.com/supercpe/cpe-tracker/internal/store"
)

func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir          = flag.String("dir", "", "directory of certificates to ingest (required)")
		dbPath       = flag.String("db", "", "SQLite database path (default <dir>/cpe.db, use :memory: for throwaway runs)")
		out          = flag.String("out", "", "output XLSX path (default <dir>/cpe-records.xlsx)")
		name         = flag.String("name", "Batch User", "licensee full name")
		email        = flag.String("email", "batch@localhost", "licensee email")
		jurisdiction = flag.String("jurisdiction", "", "jurisdiction code for a compliance summary (optional)")
		issued       = flag.String("issued", "", "license issue date YYYY-MM-DD (required with --jurisdiction)")
		workers      = flag.Int("workers", 4, "concurrent ingest workers")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *dbPath == "" {
		*dbPath = filepath.Join(*dir, "cpe.db")
	}
	if *out == "" {
		*out = filepath.Join(*dir, "cpe-records.xlsx")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	db, err := store.OpenSQLite(*dbPath, logger)
	if err != nil {
		printError("Error: open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close(db, nil, logger)
	if err := store.Migrate(ctx, db); err != nil {
		printError("Error: migrate: %v\n", err)
		os.Exit(1)
	}

	licenseesRepo := store.NewLicenseeRepository(db, logger)
	recordsRepo := store.NewRecordRepository(db, logger)

	licensee, err := licenseesRepo.GetByEmail(ctx, *email)
	if err != nil {
		licensee = &entity.Licensee{FullName: *name, Email: *email}
		if err := licenseesRepo.Create(ctx, licensee); err != nil {
			printError("Error: create licensee: %v\n", err)
			os.Exit(1)
		}
	}

	extractor := ocr.NewExtractor(ocr.Config{}, logger)
	engine := extract.NewEngine(logger)
	svc := ingest.NewService(recordsRepo, extractor, engine, common.IngestConfig{
		Concurrency: *workers,
		JobTimeout:  3 * time.Minute,
	}, logger)

	paths, err := collectCertificates(*dir)
	if err != nil {
		printError("Error: scan directory: %v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		printError("Error: no certificate files found in %s\n", *dir)
		os.Exit(1)
	}

	results, stats := svc.IngestBatch(ctx, licensee.ID, paths)
	for _, res := range results {
		line := fmt.Sprintf("%-20s %s", res.Outcome, res.Filename)
		if res.Error != "" {
			line += "  (" + res.Error + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d files: %d accepted, %d need review, %d duplicates, %d rejected, %d unreadable\n",
		stats.Total, stats.Accepted, stats.NeedsReview, stats.Duplicates, stats.Rejected, stats.ExtractionFailed)
	fmt.Printf("%.1f credit hours recorded\n", stats.TotalCredits)

	var summary *entity.ComplianceResult
	if *jurisdiction != "" {
		summary = evaluate(ctx, recordsRepo, licensee, *jurisdiction, *issued, logger)
	}

	exporter := export.NewService(recordsRepo, logger)
	data, err := exporter.ExportRecordsXLSX(ctx, licensee.ID, nil, nil, summary)
	if err != nil {
		printError("Error: export: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		printError("Error: write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}

func evaluate(ctx context.Context, records store.RecordRepository, licensee *entity.Licensee, code, issued string, logger *slog.Logger) *entity.ComplianceResult {
	catalog, err := rules.Load()
	if err != nil {
		printError("Error: load jurisdiction catalog: %v\n", err)
		return nil
	}
	rule, err := catalog.Get(code)
	if err != nil {
		printError("Error: unknown jurisdiction %q\n", code)
		return nil
	}
	anchor, err := time.Parse("2006-01-02", issued)
	if err != nil {
		printError("Error: --issued must be YYYY-MM-DD when --jurisdiction is set\n")
		return nil
	}

	all, err := records.ListAll(ctx, licensee.ID)
	if err != nil {
		printError("Error: list records: %v\n", err)
		return nil
	}
	result, err := compliance.NewEvaluator(logger).Evaluate(rule, &anchor, time.Now().UTC(), all)
	if err != nil {
		printError("Error: evaluate compliance: %v\n", err)
		return nil
	}

	fmt.Printf("\n%s compliance: %s (%.1f%%)\n", rule.Code, result.Status, result.CompliancePercentage)
	for _, d := range result.Deficits {
		fmt.Println("  deficit:", d)
	}
	for _, r := range result.Recommendations {
		fmt.Println("  next:", r)
	}
	return &result
}

func collectCertificates(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := constants.NormalizeExt(strings.ToLower(filepath.Ext(path)))
		if constants.IsAllowedExt(ext) {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}
