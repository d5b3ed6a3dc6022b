package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/entity"
	"github.com/supercpe/cpe-tracker/internal/store"
)

func exportFixture(t *testing.T) (*Service, *entity.Licensee) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := store.OpenSQLite(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(context.Background(), db))

	licensees := store.NewLicenseeRepository(db, logger)
	l := &entity.Licensee{FullName: "Jane Smith", Email: "jane@example.com"}
	require.NoError(t, licensees.Create(context.Background(), l))

	records := store.NewRecordRepository(db, logger)
	for i, d := range []time.Time{
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC),
	} {
		rec := &entity.CPERecord{
			LicenseeID:     l.ID,
			CourseName:     "Federal Tax Update",
			ProviderName:   "Western CPE",
			FieldOfStudy:   "Taxation",
			CreditHours:    8,
			DeliveryMethod: "QAS Self-Study",
			CompletionDate: &d,
			ContentDigest:  "digest-" + string(rune('a'+i)),
			Method:         "text_pattern",
			Confidence:     1.0,
		}
		require.NoError(t, records.Insert(context.Background(), rec))
	}

	return NewService(records, logger), l
}

func TestExportRecordsXLSX(t *testing.T) {
	svc, l := exportFixture(t)

	data, err := svc.ExportRecordsXLSX(context.Background(), l.ID, nil, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"CPE Records"}, f.GetSheetList())

	rows, err := f.GetRows("CPE Records")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header plus two records
	require.Equal(t, "Completion Date", rows[0][0])
	require.Equal(t, "2024-03-01", rows[1][0])
	require.Equal(t, "Federal Tax Update", rows[1][1])
}

func TestExportRecordsXLSXDateWindow(t *testing.T) {
	svc, l := exportFixture(t)

	from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	data, err := svc.ExportRecordsXLSX(context.Background(), l.ID, &from, nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("CPE Records")
	require.NoError(t, err)
	require.Len(t, rows, 2) // header plus the 2025 record only
	require.Equal(t, "2025-02-10", rows[1][0])
}

func TestExportRecordsXLSXWithSummary(t *testing.T) {
	svc, l := exportFixture(t)

	summary := &entity.ComplianceResult{
		Status:               constants.StatusAtRisk,
		TotalHours:           16,
		TotalHoursRequired:   40,
		EthicsHours:          0,
		EthicsHoursRequired:  4,
		CompliancePercentage: 40,
		Deficits:             []string{"24.0 general hours short"},
		Recommendations:      []string{"Upload 24.0 more CPE hours"},
	}
	data, err := svc.ExportRecordsXLSX(context.Background(), l.ID, nil, nil, summary)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Contains(t, f.GetSheetList(), "Compliance Summary")

	rows, err := f.GetRows("Compliance Summary")
	require.NoError(t, err)
	require.Equal(t, []string{"Status", string(constants.StatusAtRisk)}, rows[0])
}
