// Package server exposes the HTTP API: licensee setup, certificate upload,
// compliance evaluation, and exports.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/supercpe/cpe-tracker/internal/async"
	"github.com/supercpe/cpe-tracker/internal/compliance"
	"github.com/supercpe/cpe-tracker/internal/export"
	"github.com/supercpe/cpe-tracker/internal/ingest"
	"github.com/supercpe/cpe-tracker/internal/rules"
	"github.com/supercpe/cpe-tracker/internal/store"
)

// maxUploadBytes bounds a single multipart upload request.
const maxUploadBytes = 50 << 20

type Server struct {
	logger    *slog.Logger
	licensees store.LicenseeRepository
	records   store.RecordRepository
	catalog   *rules.Catalog
	evaluator *compliance.Evaluator
	ingest    *ingest.Service
	exporter  *export.Service
	queue     *async.IngestQueue
}

func New(
	logger *slog.Logger,
	licensees store.LicenseeRepository,
	records store.RecordRepository,
	catalog *rules.Catalog,
	evaluator *compliance.Evaluator,
	ingestSvc *ingest.Service,
	exporter *export.Service,
	queue *async.IngestQueue,
) *Server {
	return &Server{
		logger:    logger,
		licensees: licensees,
		records:   records,
		catalog:   catalog,
		evaluator: evaluator,
		ingest:    ingestSvc,
		exporter:  exporter,
		queue:     queue,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/jurisdictions", s.listJurisdictions)
		r.Get("/jurisdictions/{code}", s.getJurisdiction)

		r.Post("/licensees", s.createLicensee)
		r.Route("/licensees/{id}", func(r chi.Router) {
			r.Get("/", s.getLicensee)
			r.Post("/license", s.setupLicense)

			r.Post("/certificates", s.uploadCertificate)
			r.Post("/certificates/async", s.uploadCertificateAsync)
			r.Post("/certificates/bulk", s.uploadBulk)
			r.Post("/records/manual", s.submitManual)

			r.Get("/records", s.listRecords)
			r.Get("/compliance", s.getCompliance)
			r.Get("/analytics", s.getAnalytics)
			r.Get("/export", s.exportRecords)
		})
	})
	return r
}
