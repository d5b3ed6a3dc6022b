package async

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/entity"
	"github.com/supercpe/cpe-tracker/internal/extract"
	"github.com/supercpe/cpe-tracker/internal/ingest"
	"github.com/supercpe/cpe-tracker/internal/ocr"
	"github.com/supercpe/cpe-tracker/internal/store"
)

type staticExtractor struct{}

func (staticExtractor) Extract(_ context.Context, _ string) (ocr.ExtractionResult, error) {
	return ocr.ExtractionResult{
		Text: `Western CPE
Certificate of Completion
for successfully completing: Federal Tax Update 2025
CPE Credits: 8.0 hours
Completion Date: 01/15/2025`,
		Method: "pdf-text",
	}, nil
}

func TestQueueProcessesJobsBeforeShutdown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	db, err := store.OpenSQLite(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(ctx, db))

	licensees := store.NewLicenseeRepository(db, logger)
	l := &entity.Licensee{FullName: "Jane Smith", Email: "jane@example.com"}
	require.NoError(t, licensees.Create(ctx, l))

	records := store.NewRecordRepository(db, logger)
	svc := ingest.NewService(records, staticExtractor{}, extract.NewEngine(logger), common.IngestConfig{
		Concurrency: 1,
		JobTimeout:  time.Minute,
	}, logger)

	q := NewIngestQueue(svc, logger, WithWorkers(2), WithQueueSize(8))
	for _, name := range []string{"a.pdf", "b.pdf"} {
		require.NoError(t, q.Enqueue(ctx, Job{
			LicenseeID:  l.ID,
			Filename:    name,
			Content:     []byte("content-" + name),
			SubmittedAt: time.Now(),
		}))
	}

	// Shutdown drains the channel before stopping the workers
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	all, err := records.ListAll(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestQueueIgnoresEnqueueAfterShutdown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	db, err := store.OpenSQLite(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(ctx, db))

	records := store.NewRecordRepository(db, logger)
	svc := ingest.NewService(records, staticExtractor{}, extract.NewEngine(logger), common.IngestConfig{
		Concurrency: 1,
		JobTimeout:  time.Minute,
	}, logger)

	q := NewIngestQueue(svc, logger, WithWorkers(1))
	q.Shutdown(ctx)

	// a closed queue drops the job instead of panicking on the channel
	require.NoError(t, q.Enqueue(ctx, Job{
		LicenseeID: uuid.New(),
		Filename:   "late.pdf",
		Content:    []byte("x"),
	}))
}
