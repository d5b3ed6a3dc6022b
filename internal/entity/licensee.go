package entity

import (
	"time"

	"github.com/google/uuid"
)

// Licensee is a licensed professional whose continuing education is tracked.
// JurisdictionCode and LicenseIssueDate are set by the one-time license
// setup; until then compliance evaluation reports Setup Required.
type Licensee struct {
	ID               uuid.UUID  `json:"id"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	JurisdictionCode *string    `json:"jurisdiction_code,omitempty"`
	LicenseNumber    *string    `json:"license_number,omitempty"`
	LicenseIssueDate *time.Time `json:"license_issue_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
