// Package ingest runs the certificate upload pipeline: validate, digest,
// extract, quality-check, persist. Extraction never aborts an upload; a
// document the pipeline cannot read becomes a manual review item instead of
// an error.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/entity"
	"github.com/supercpe/cpe-tracker/internal/extract"
	"github.com/supercpe/cpe-tracker/internal/ocr"
	"github.com/supercpe/cpe-tracker/internal/store"
)

// TextExtractor is the document-to-text boundary. Production wires the
// ocr.Extractor; tests wire a fake.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.ExtractionResult, error)
}

// Result is the per-document outcome of an ingest attempt. Record is set
// for accepted and duplicate outcomes; CorrectionForm for needs_review and
// extraction_failed.
type Result struct {
	Filename       string                   `json:"filename"`
	Outcome        constants.IngestOutcome  `json:"outcome"`
	Digest         string                   `json:"content_digest,omitempty"`
	Record         *entity.CPERecord        `json:"record,omitempty"`
	Candidate      *entity.CandidateRecord  `json:"candidate,omitempty"`
	CorrectionForm *entity.CorrectionForm   `json:"correction_form,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

type Service struct {
	records   store.RecordRepository
	extractor TextExtractor
	engine    *extract.Engine
	cfg       common.IngestConfig
	logger    *slog.Logger
}

func NewService(records store.RecordRepository, extractor TextExtractor, engine *extract.Engine, cfg common.IngestConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		records:   records,
		extractor: extractor,
		engine:    engine,
		cfg:       cfg,
		logger:    logger,
	}
}

// IngestFile processes one uploaded certificate held in memory. The content
// is staged to a temp file for the external OCR binaries.
func (s *Service) IngestFile(ctx context.Context, licenseeID uuid.UUID, filename string, content []byte) Result {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if !constants.IsAllowedExt(ext) {
		return Result{
			Filename: filename,
			Outcome:  constants.OutcomeRejected,
			Error:    fmt.Sprintf("unsupported file type %q", ext),
		}
	}

	digest := contentDigest(content)
	if res, done := s.checkDuplicate(ctx, licenseeID, filename, digest); done {
		return res
	}

	tmp, err := stageTempFile(content, ext)
	if err != nil {
		s.logger.Error("failed to stage upload", "filename", filename, "error", err)
		return Result{Filename: filename, Outcome: constants.OutcomeRejected, Error: err.Error()}
	}
	defer os.Remove(tmp)

	return s.process(ctx, licenseeID, filename, tmp, digest)
}

// IngestPath processes a certificate already on disk (batch CLI).
func (s *Service) IngestPath(ctx context.Context, licenseeID uuid.UUID, path string) Result {
	filename := filepath.Base(path)
	ext := constants.NormalizeExt(filepath.Ext(path))
	if !constants.IsAllowedExt(ext) {
		return Result{
			Filename: filename,
			Outcome:  constants.OutcomeRejected,
			Error:    fmt.Sprintf("unsupported file type %q", ext),
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Result{Filename: filename, Outcome: constants.OutcomeRejected, Error: err.Error()}
	}

	digest := contentDigest(content)
	if res, done := s.checkDuplicate(ctx, licenseeID, filename, digest); done {
		return res
	}
	return s.process(ctx, licenseeID, filename, path, digest)
}

// checkDuplicate is the fast path: a digest already on file short-circuits
// the pipeline before any OCR work. The storage constraint remains the
// authoritative guard for concurrent uploads.
func (s *Service) checkDuplicate(ctx context.Context, licenseeID uuid.UUID, filename, digest string) (Result, bool) {
	existing, err := s.records.GetByDigest(ctx, licenseeID, digest)
	if err == nil {
		s.logger.Info("duplicate certificate skipped",
			"licensee_id", licenseeID, "filename", filename, "digest", digest)
		return Result{
			Filename: filename,
			Outcome:  constants.OutcomeDuplicate,
			Digest:   digest,
			Record:   existing,
		}, true
	}
	if !errors.Is(err, common.ErrNotFound) {
		return Result{Filename: filename, Outcome: constants.OutcomeRejected, Digest: digest, Error: err.Error()}, true
	}
	return Result{}, false
}

func (s *Service) process(ctx context.Context, licenseeID uuid.UUID, filename, path, digest string) Result {
	// filename evidence first: structured names carry exact credits
	candidate := s.engine.ExtractFromFilename(filename)

	if candidate == nil {
		extCtx := ctx
		if s.cfg.JobTimeout > 0 {
			var cancel context.CancelFunc
			extCtx, cancel = context.WithTimeout(ctx, s.cfg.JobTimeout)
			defer cancel()
		}
		res, err := s.extractor.Extract(extCtx, path)
		if err != nil {
			s.logger.Warn("text extraction failed, routing to manual entry",
				"filename", filename, "error", err)
			c := s.engine.Extract("")
			return Result{
				Filename:       filename,
				Outcome:        constants.OutcomeExtractionFailed,
				Digest:         digest,
				Candidate:      &c,
				CorrectionForm: extract.BuildCorrectionForm(&c),
				Error:          err.Error(),
			}
		}
		c := s.engine.Extract(res.Text)
		candidate = &c
	}

	if !candidate.AutoAcceptable() {
		s.logger.Info("certificate needs review",
			"filename", filename, "issues", candidate.QualityIssues)
		return Result{
			Filename:       filename,
			Outcome:        constants.OutcomeNeedsReview,
			Digest:         digest,
			Candidate:      candidate,
			CorrectionForm: extract.BuildCorrectionForm(candidate),
		}
	}

	rec := recordFromCandidate(licenseeID, filename, digest, candidate)
	if err := s.records.Insert(ctx, rec); err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			existing, getErr := s.records.GetByDigest(ctx, licenseeID, digest)
			if getErr != nil {
				existing = nil
			}
			return Result{
				Filename: filename,
				Outcome:  constants.OutcomeDuplicate,
				Digest:   digest,
				Record:   existing,
			}
		}
		s.logger.Error("failed to persist record", "filename", filename, "error", err)
		return Result{Filename: filename, Outcome: constants.OutcomeRejected, Digest: digest, Error: err.Error()}
	}

	s.logger.Info("certificate accepted",
		"licensee_id", licenseeID,
		"filename", filename,
		"course", rec.CourseName,
		"credits", rec.CreditHours,
		"method", rec.Method,
	)
	return Result{
		Filename:  filename,
		Outcome:   constants.OutcomeAccepted,
		Digest:    digest,
		Record:    rec,
		Candidate: candidate,
	}
}

func recordFromCandidate(licenseeID uuid.UUID, filename, digest string, c *entity.CandidateRecord) *entity.CPERecord {
	return &entity.CPERecord{
		LicenseeID:      licenseeID,
		CourseName:      c.CourseName,
		CourseCode:      c.CourseCode,
		ProviderName:    c.ProviderName,
		FieldOfStudy:    string(c.FieldOfStudy),
		CreditHours:     c.CreditHours,
		IsEthics:        c.IsEthics,
		DeliveryMethod:  string(c.DeliveryMethod),
		CompletionDate:  c.CompletionDate,
		CertificateName: filename,
		ContentDigest:   digest,
		Method:          string(c.Method),
		Confidence:      c.Confidence,
	}
}

func contentDigest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func stageTempFile(content []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", "cpe-upload-*."+strings.TrimPrefix(ext, "."))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}
