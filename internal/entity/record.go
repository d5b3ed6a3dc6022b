package entity

import (
	"time"

	"github.com/google/uuid"
)

// CPERecord is a persisted continuing-education course record.
type CPERecord struct {
	ID              uuid.UUID  `json:"id"`
	LicenseeID      uuid.UUID  `json:"licensee_id"`
	CourseName      string     `json:"course_name"`
	CourseCode      *string    `json:"course_code,omitempty"`
	ProviderName    string     `json:"provider_name"`
	FieldOfStudy    string     `json:"field_of_study"`
	CreditHours     float64    `json:"credit_hours"`
	IsEthics        bool       `json:"is_ethics"`
	DeliveryMethod  string     `json:"delivery_method"`
	CompletionDate  *time.Time `json:"completion_date,omitempty"`
	CertificateName string     `json:"certificate_name,omitempty"`
	ContentDigest   string     `json:"content_digest,omitempty"`
	Method          string     `json:"extraction_method"`
	Confidence      float64    `json:"confidence"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
