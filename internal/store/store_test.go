package store

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/entity"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := OpenSQLite(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func testLicensee(t *testing.T, db *sql.DB) *entity.Licensee {
	t.Helper()
	repo := NewLicenseeRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	l := &entity.Licensee{FullName: "Jane Smith", Email: "jane@example.com"}
	require.NoError(t, repo.Create(context.Background(), l))
	return l
}

func testRecord(licenseeID uuid.UUID, digest string, d time.Time) *entity.CPERecord {
	return &entity.CPERecord{
		LicenseeID:     licenseeID,
		CourseName:     "Federal Tax Update",
		ProviderName:   "Western CPE",
		FieldOfStudy:   "Taxation",
		CreditHours:    8,
		DeliveryMethod: "QAS Self-Study",
		CompletionDate: &d,
		ContentDigest:  digest,
		Method:         "text_pattern",
		Confidence:     1.0,
	}
}

func TestRecordInsertAndGetByDigest(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	l := testLicensee(t, db)
	repo := NewRecordRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := testRecord(l.ID, "digest-1", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	code := "M252"
	rec.CourseCode = &code
	rec.IsEthics = true
	require.NoError(t, repo.Insert(ctx, rec))
	require.NotEqual(t, uuid.Nil, rec.ID)

	got, err := repo.GetByDigest(ctx, l.ID, "digest-1")
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
	require.Equal(t, "Federal Tax Update", got.CourseName)
	require.NotNil(t, got.CourseCode)
	require.Equal(t, "M252", *got.CourseCode)
	require.True(t, got.IsEthics)
	require.NotNil(t, got.CompletionDate)
	require.Equal(t, "2025-03-01", got.CompletionDate.Format("2006-01-02"))
}

func TestRecordDuplicateDigestRejected(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	l := testLicensee(t, db)
	repo := NewRecordRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	d := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, testRecord(l.ID, "same-digest", d)))

	err := repo.Insert(ctx, testRecord(l.ID, "same-digest", d))
	require.ErrorIs(t, err, common.ErrDuplicate)

	// only the first insert landed
	all, err := repo.ListAll(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestRecordSameDigestDifferentLicensee(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repoL := NewLicenseeRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	repo := NewRecordRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	a := &entity.Licensee{FullName: "A", Email: "a@example.com"}
	b := &entity.Licensee{FullName: "B", Email: "b@example.com"}
	require.NoError(t, repoL.Create(ctx, a))
	require.NoError(t, repoL.Create(ctx, b))

	d := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, testRecord(a.ID, "shared", d)))
	// the uniqueness scope is per licensee
	require.NoError(t, repo.Insert(ctx, testRecord(b.ID, "shared", d)))
}

func TestRecordGetByDigestNotFound(t *testing.T) {
	db := testDB(t)
	l := testLicensee(t, db)
	repo := NewRecordRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := repo.GetByDigest(context.Background(), l.ID, "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestRecordListForPeriod(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	l := testLicensee(t, db)
	repo := NewRecordRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	dates := []time.Time{
		time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		require.NoError(t, repo.Insert(ctx, testRecord(l.ID, "d"+string(rune('0'+i)), d)))
	}

	// undated records are excluded from period queries
	undated := testRecord(l.ID, "undated", time.Time{})
	undated.CompletionDate = nil
	require.NoError(t, repo.Insert(ctx, undated))

	got, err := repo.ListForPeriod(ctx, l.ID,
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	// ordered by completion date
	require.True(t, got[0].CompletionDate.Before(*got[1].CompletionDate))
}

func TestLicenseeSetupLicense(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewLicenseeRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	l := &entity.Licensee{FullName: "Jane Smith", Email: "jane@example.com"}
	require.NoError(t, repo.Create(ctx, l))
	require.Nil(t, l.JurisdictionCode)

	issued := time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)
	updated, err := repo.SetupLicense(ctx, l.ID, "NH", "12345", issued)
	require.NoError(t, err)
	require.NotNil(t, updated.JurisdictionCode)
	require.Equal(t, "NH", *updated.JurisdictionCode)
	require.NotNil(t, updated.LicenseNumber)
	require.Equal(t, "12345", *updated.LicenseNumber)
	require.NotNil(t, updated.LicenseIssueDate)
	require.Equal(t, issued, *updated.LicenseIssueDate)
}

func TestLicenseeSetupLicenseNotFound(t *testing.T) {
	db := testDB(t)
	repo := NewLicenseeRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := repo.SetupLicense(context.Background(), uuid.New(), "NH", "1", time.Now())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestLicenseeDuplicateEmail(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewLicenseeRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, repo.Create(ctx, &entity.Licensee{FullName: "A", Email: "dup@example.com"}))
	err := repo.Create(ctx, &entity.Licensee{FullName: "B", Email: "dup@example.com"})
	require.ErrorIs(t, err, common.ErrDuplicate)
}

func TestLicenseeGetByEmail(t *testing.T) {
	db := testDB(t)
	l := testLicensee(t, db)

	repo := NewLicenseeRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	got, err := repo.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, l.ID, got.ID)

	_, err = repo.GetByEmail(context.Background(), "missing@example.com")
	require.ErrorIs(t, err, common.ErrNotFound)
}
