package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/entity"
)

type LicenseeRepository interface {
	Create(ctx context.Context, l *entity.Licensee) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Licensee, error)
	GetByEmail(ctx context.Context, email string) (*entity.Licensee, error)
	// SetupLicense records the one-time license details that anchor
	// compliance periods.
	SetupLicense(ctx context.Context, id uuid.UUID, jurisdictionCode, licenseNumber string, issueDate time.Time) (*entity.Licensee, error)
}

type licenseeRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewLicenseeRepository(db *sql.DB, logger *slog.Logger) LicenseeRepository {
	return &licenseeRepository{db: db, logger: logger}
}

const licenseeColumns = `id, full_name, email, jurisdiction_code, license_number,
	license_issue_date, created_at, updated_at`

func (r *licenseeRepository) Create(ctx context.Context, l *entity.Licensee) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `INSERT INTO licensees (`+licenseeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID.String(), l.FullName, l.Email, l.JurisdictionCode, l.LicenseNumber,
		fmtDate(l.LicenseIssueDate), now.Format(tsLayout), now.Format(tsLayout))
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrDuplicate
		}
		r.logger.Error("failed to create licensee", "email", l.Email, "error", err)
		return wrapDB(err)
	}
	return nil
}

func (r *licenseeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Licensee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+licenseeColumns+` FROM licensees WHERE id = $1`,
		id.String())
	return scanLicensee(row)
}

func (r *licenseeRepository) GetByEmail(ctx context.Context, email string) (*entity.Licensee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+licenseeColumns+` FROM licensees WHERE email = $1`,
		email)
	return scanLicensee(row)
}

func (r *licenseeRepository) SetupLicense(ctx context.Context, id uuid.UUID, jurisdictionCode, licenseNumber string, issueDate time.Time) (*entity.Licensee, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE licensees
		SET jurisdiction_code = $1, license_number = $2, license_issue_date = $3, updated_at = $4
		WHERE id = $5`,
		jurisdictionCode, licenseNumber, issueDate.Format(dateLayout),
		now.Format(tsLayout), id.String())
	if err != nil {
		r.logger.Error("failed to set up license", "licensee_id", id, "error", err)
		return nil, wrapDB(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, common.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func scanLicensee(row rowScanner) (*entity.Licensee, error) {
	var (
		l                            entity.Licensee
		id                           string
		jurisdictionCode, licenseNum sql.NullString
		issueDate                    sql.NullString
		createdAt, updatedAt         string
	)
	err := row.Scan(&id, &l.FullName, &l.Email, &jurisdictionCode, &licenseNum,
		&issueDate, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, wrapDB(err)
	}

	if l.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if jurisdictionCode.Valid {
		l.JurisdictionCode = &jurisdictionCode.String
	}
	if licenseNum.Valid {
		l.LicenseNumber = &licenseNum.String
	}
	if l.LicenseIssueDate, err = parseDate(issueDate); err != nil {
		return nil, err
	}
	if l.CreatedAt, err = time.Parse(tsLayout, createdAt); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = time.Parse(tsLayout, updatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}
