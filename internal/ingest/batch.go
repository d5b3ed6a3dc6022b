package ingest

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/supercpe/cpe-tracker/constants"
)

// BatchStats summarizes a bulk upload. CreditsByField counts only accepted
// records.
type BatchStats struct {
	Total            int                `json:"total"`
	Accepted         int                `json:"accepted"`
	NeedsReview      int                `json:"needs_review"`
	Duplicates       int                `json:"duplicates"`
	Rejected         int                `json:"rejected"`
	ExtractionFailed int                `json:"extraction_failed"`
	TotalCredits     float64            `json:"total_credits"`
	CreditsByField   map[string]float64 `json:"credits_by_field"`
}

// IngestBatch processes many documents concurrently with a bounded worker
// count. Results keep the input order; one bad document never stops the
// batch.
func (s *Service) IngestBatch(ctx context.Context, licenseeID uuid.UUID, paths []string) ([]Result, BatchStats) {
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = s.IngestPath(gctx, licenseeID, path)
			return nil
		})
	}
	// workers never return errors; Wait is for completion only
	_ = g.Wait()

	stats := Summarize(results)
	s.logger.Info("batch ingest complete",
		"licensee_id", licenseeID,
		"total", stats.Total,
		"accepted", stats.Accepted,
		"needs_review", stats.NeedsReview,
		"duplicates", stats.Duplicates,
	)
	return results, stats
}

// UploadFile is one in-memory document of a bulk upload.
type UploadFile struct {
	Filename string
	Content  []byte
}

// IngestFiles is the in-memory counterpart of IngestBatch, used by the HTTP
// bulk upload.
func (s *Service) IngestFiles(ctx context.Context, licenseeID uuid.UUID, files []UploadFile) ([]Result, BatchStats) {
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i] = s.IngestFile(gctx, licenseeID, file.Filename, file.Content)
			return nil
		})
	}
	_ = g.Wait()

	return results, Summarize(results)
}

// Summarize aggregates per-document outcomes into batch statistics.
func Summarize(results []Result) BatchStats {
	stats := BatchStats{
		Total:          len(results),
		CreditsByField: make(map[string]float64),
	}
	for _, res := range results {
		switch res.Outcome {
		case constants.OutcomeAccepted:
			stats.Accepted++
			stats.TotalCredits += res.Record.CreditHours
			stats.CreditsByField[res.Record.FieldOfStudy] += res.Record.CreditHours
		case constants.OutcomeNeedsReview:
			stats.NeedsReview++
		case constants.OutcomeDuplicate:
			stats.Duplicates++
		case constants.OutcomeExtractionFailed:
			stats.ExtractionFailed++
		default:
			stats.Rejected++
		}
	}
	return stats
}
