package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/common"
	"github.com/supercpe/cpe-tracker/internal/entity"
)

// ManualEntry is an operator-confirmed record, either typed from scratch or
// a corrected needs_review candidate. Digest, when present, ties the entry
// back to the originally uploaded document so the duplicate guard still
// applies.
type ManualEntry struct {
	CourseName     string  `json:"course_name"`
	CourseCode     string  `json:"course_code,omitempty"`
	ProviderName   string  `json:"provider_name"`
	FieldOfStudy   string  `json:"field_of_study,omitempty"`
	CreditHours    float64 `json:"credit_hours"`
	CompletionDate string  `json:"completion_date"`
	DeliveryMethod string  `json:"delivery_method,omitempty"`
	IsEthics       bool    `json:"is_ethics"`
	Digest         string  `json:"content_digest,omitempty"`
	Filename       string  `json:"filename,omitempty"`
}

const manualCreditMax = 50.0

// SubmitManual validates and persists a manual entry. Unlike automatic
// extraction, every required field must be present and valid; there is no
// placeholder fallback.
func (s *Service) SubmitManual(ctx context.Context, licenseeID uuid.UUID, in ManualEntry) (*entity.CPERecord, error) {
	courseName := strings.TrimSpace(in.CourseName)
	provider := strings.TrimSpace(in.ProviderName)
	if courseName == "" {
		return nil, fmt.Errorf("course name is required: %w", common.ErrInvalidInput)
	}
	if provider == "" {
		return nil, fmt.Errorf("provider name is required: %w", common.ErrInvalidInput)
	}
	if in.CreditHours <= 0 || in.CreditHours > manualCreditMax {
		return nil, fmt.Errorf("credit hours %.2f out of range: %w", in.CreditHours, common.ErrInvalidInput)
	}
	completed, err := time.Parse("2006-01-02", in.CompletionDate)
	if err != nil {
		return nil, fmt.Errorf("completion date %q must be YYYY-MM-DD: %w", in.CompletionDate, common.ErrInvalidInput)
	}

	field, _ := constants.CanonicalizeFieldOfStudy(in.FieldOfStudy)
	delivery := strings.TrimSpace(in.DeliveryMethod)
	if delivery == "" {
		delivery = string(constants.DeliverySelfStudy)
	}

	digest := in.Digest
	if digest == "" {
		// no document behind this entry; derive a deterministic digest so
		// resubmitting the same form stays idempotent
		digest = contentDigest(fmt.Appendf(nil, "manual|%s|%s|%s|%.2f",
			licenseeID, strings.ToLower(courseName), in.CompletionDate, in.CreditHours))
	}

	rec := &entity.CPERecord{
		LicenseeID:      licenseeID,
		CourseName:      courseName,
		ProviderName:    provider,
		FieldOfStudy:    string(field),
		CreditHours:     in.CreditHours,
		IsEthics:        in.IsEthics,
		DeliveryMethod:  delivery,
		CompletionDate:  &completed,
		CertificateName: in.Filename,
		ContentDigest:   digest,
		Method:          string(constants.MethodManual),
		Confidence:      1.0,
	}
	if code := strings.TrimSpace(in.CourseCode); code != "" {
		code = strings.ToUpper(code)
		rec.CourseCode = &code
	}

	if err := s.records.Insert(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("manual record saved",
		"licensee_id", licenseeID,
		"course", rec.CourseName,
		"credits", rec.CreditHours,
	)
	return rec, nil
}
