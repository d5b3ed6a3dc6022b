package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/entity"
)

const (
	dateLayout = "2006-01-02"
	tsLayout   = time.RFC3339
)

type RecordRepository interface {
	// Insert persists a new record. A content digest already stored for the
	// licensee fails with ErrDuplicate and leaves the table unchanged.
	Insert(ctx context.Context, rec *entity.CPERecord) error
	GetByDigest(ctx context.Context, licenseeID uuid.UUID, digest string) (*entity.CPERecord, error)
	ListForPeriod(ctx context.Context, licenseeID uuid.UUID, from, to time.Time) ([]entity.CPERecord, error)
	ListAll(ctx context.Context, licenseeID uuid.UUID) ([]entity.CPERecord, error)
}

type recordRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRecordRepository(db *sql.DB, logger *slog.Logger) RecordRepository {
	return &recordRepository{db: db, logger: logger}
}

const recordColumns = `id, licensee_id, course_name, course_code, provider_name,
	field_of_study, credit_hours, is_ethics, delivery_method, completion_date,
	certificate_name, content_digest, extraction_method, confidence,
	created_at, updated_at`

func (r *recordRepository) Insert(ctx context.Context, rec *entity.CPERecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `INSERT INTO cpe_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		rec.ID.String(), rec.LicenseeID.String(), rec.CourseName, rec.CourseCode,
		rec.ProviderName, rec.FieldOfStudy, rec.CreditHours, boolToInt(rec.IsEthics),
		rec.DeliveryMethod, fmtDate(rec.CompletionDate), rec.CertificateName,
		rec.ContentDigest, rec.Method, rec.Confidence,
		now.Format(tsLayout), now.Format(tsLayout))
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrDuplicate
		}
		r.logger.Error("failed to insert record", "licensee_id", rec.LicenseeID, "error", err)
		return wrapDB(err)
	}
	return nil
}

func (r *recordRepository) GetByDigest(ctx context.Context, licenseeID uuid.UUID, digest string) (*entity.CPERecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM cpe_records
		WHERE licensee_id = $1 AND content_digest = $2`,
		licenseeID.String(), digest)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, wrapDB(err)
	}
	return rec, nil
}

func (r *recordRepository) ListForPeriod(ctx context.Context, licenseeID uuid.UUID, from, to time.Time) ([]entity.CPERecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM cpe_records
		WHERE licensee_id = $1
		  AND completion_date IS NOT NULL
		  AND completion_date >= $2 AND completion_date <= $3
		ORDER BY completion_date`,
		licenseeID.String(), from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, wrapDB(err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *recordRepository) ListAll(ctx context.Context, licenseeID uuid.UUID) ([]entity.CPERecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM cpe_records
		WHERE licensee_id = $1
		ORDER BY completion_date`,
		licenseeID.String())
	if err != nil {
		return nil, wrapDB(err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*entity.CPERecord, error) {
	var (
		rec                  entity.CPERecord
		id, licenseeID       string
		courseCode           sql.NullString
		isEthics             int
		completionDate       sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&id, &licenseeID, &rec.CourseName, &courseCode,
		&rec.ProviderName, &rec.FieldOfStudy, &rec.CreditHours, &isEthics,
		&rec.DeliveryMethod, &completionDate, &rec.CertificateName,
		&rec.ContentDigest, &rec.Method, &rec.Confidence, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	rec.LicenseeID, err = uuid.Parse(licenseeID)
	if err != nil {
		return nil, err
	}
	if courseCode.Valid {
		rec.CourseCode = &courseCode.String
	}
	rec.IsEthics = isEthics != 0
	if rec.CompletionDate, err = parseDate(completionDate); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = time.Parse(tsLayout, createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = time.Parse(tsLayout, updatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]entity.CPERecord, error) {
	var out []entity.CPERecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, wrapDB(err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB(err)
	}
	return out, nil
}

// wrapDB tags a backend failure with the database error sentinel so callers
// can classify it without depending on driver error types.
func wrapDB(err error) error {
	return fmt.Errorf("%v: %w", err, common.ErrDatabase)
}

// isUniqueViolation recognizes the duplicate-key failure shapes of both
// backends: SQLSTATE 23505 from Postgres, constraint message text from
// SQLite.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

func fmtDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func parseDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
