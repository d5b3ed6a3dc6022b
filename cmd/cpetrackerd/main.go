package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supercpe/cpe-tracker/internal/async"
	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/compliance"
	"github.com/supercpe/cpe-tracker/internal/export"
	"github.com/supercpe/cpe-tracker/internal/extract"
	"github.com/supercpe/cpe-tracker/internal/ingest"
	"github.com/supercpe/cpe-tracker/internal/ocr"
	"github.com/supercpe/cpe-tracker/internal/rules"
	"github.com/supercpe/cpe-tracker/internal/server"
	"github.com/supercpe/cpe-tracker/internal/store"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := common.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		db   *sql.DB
		pool *pgxpool.Pool
	)
	if cfg.Database.DSN != "" {
		db, pool, err = store.OpenPostgres(ctx, store.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
	} else {
		db, err = store.OpenSQLite(cfg.Database.SQLitePath, logger)
	}
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close(db, pool, logger)

	if err := store.HealthCheck(ctx, db, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := store.Migrate(ctx, db); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	catalog, err := rules.Load()
	if err != nil {
		logger.Error("failed to load jurisdiction catalog", "error", err)
		os.Exit(1)
	}

	licenseesRepo := store.NewLicenseeRepository(db, logger)
	recordsRepo := store.NewRecordRepository(db, logger)

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
	}, logger)
	engine := extract.NewEngine(logger)
	ingestSvc := ingest.NewService(recordsRepo, extractor, engine, cfg.Ingest, logger)

	queue := async.NewIngestQueue(ingestSvc, logger,
		async.WithWorkers(cfg.Ingest.Concurrency),
		async.WithQueueSize(cfg.Ingest.QueueSize),
		async.WithJobTimeout(cfg.Ingest.JobTimeout),
	)

	evaluator := compliance.NewEvaluator(logger)
	exporter := export.NewService(recordsRepo, logger)

	srv := server.New(logger, licenseesRepo, recordsRepo, catalog, evaluator, ingestSvc, exporter, queue)
	httpServer := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("cpe-tracker listening", "addr", cfg.AppAddr, "env", cfg.AppEnv)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	queue.Shutdown(context.Background())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
}
