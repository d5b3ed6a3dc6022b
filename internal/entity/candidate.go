package entity

import (
	"time"

	"github.com/supercpe/cpe-tracker/constants"
)

// CandidateRecord is the output of extraction, not yet persisted. A nil
// CompletionDate always travels with the completion_date_invalid quality
// issue and blocks automatic persistence.
type CandidateRecord struct {
	CourseName     string                     `json:"course_name"`
	CourseCode     *string                    `json:"course_code,omitempty"`
	ProviderName   string                     `json:"provider_name"`
	FieldOfStudy   constants.FieldOfStudy     `json:"field_of_study"`
	CreditHours    float64                    `json:"credit_hours"`
	CompletionDate *time.Time                 `json:"completion_date,omitempty"`
	DeliveryMethod constants.DeliveryMethod   `json:"delivery_method"`
	IsEthics       bool                       `json:"is_ethics"`
	Method         constants.ExtractionMethod `json:"extraction_method"`
	Confidence     float64                    `json:"confidence"`
	QualityIssues  []constants.QualityIssue   `json:"quality_issues,omitempty"`
}

// HasIssue reports whether the candidate carries the given quality tag.
func (c *CandidateRecord) HasIssue(issue constants.QualityIssue) bool {
	for _, tag := range c.QualityIssues {
		if tag == issue {
			return true
		}
	}
	return false
}

// AddIssue appends a quality tag, keeping the set free of duplicates.
func (c *CandidateRecord) AddIssue(issue constants.QualityIssue) {
	if !c.HasIssue(issue) {
		c.QualityIssues = append(c.QualityIssues, issue)
	}
}

// AutoAcceptable reports whether the candidate can be persisted without
// manual review.
func (c *CandidateRecord) AutoAcceptable() bool {
	return len(c.QualityIssues) == 0
}
