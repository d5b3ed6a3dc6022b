package extract

import (
	"fmt"
	"strings"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/entity"
)

var placeholderCourseNames = map[string]bool{
	"":                           true,
	strings.ToLower(UnknownCourse): true,
	"untitled":                   true,
}

var placeholderProviders = map[string]bool{
	"":                             true,
	strings.ToLower(UnknownProvider): true,
	"unknown":                      true,
}

// Validate inspects an extracted candidate and appends quality issue tags.
// A candidate with zero issues is auto-acceptable; anything else is routed
// to manual review. Credits are flagged only when the final value is out of
// range, so the 1.0 extraction fallback never flags itself.
func Validate(rec *entity.CandidateRecord) {
	if placeholderCourseNames[strings.ToLower(rec.CourseName)] {
		rec.AddIssue(constants.IssueCourseNameUnclear)
	}
	if rec.CompletionDate == nil {
		rec.AddIssue(constants.IssueCompletionDateInvalid)
	}
	if rec.CreditHours <= 0 || rec.CreditHours > creditMax {
		rec.AddIssue(constants.IssueCreditsUnreasonable)
	}
	if placeholderProviders[strings.ToLower(rec.ProviderName)] {
		rec.AddIssue(constants.IssueProviderUnclear)
	}
}

// BuildCorrectionForm produces the pre-filled manual review form for a
// candidate: every editable field with its suggested value, whether it is
// required for persistence, and whether its extraction was flagged.
func BuildCorrectionForm(rec *entity.CandidateRecord) *entity.CorrectionForm {
	suggestedDate := ""
	if rec.CompletionDate != nil {
		suggestedDate = rec.CompletionDate.Format("2006-01-02")
	}
	suggestedCode := ""
	if rec.CourseCode != nil {
		suggestedCode = *rec.CourseCode
	}

	return &entity.CorrectionForm{Fields: []entity.CorrectionField{
		{
			Name:           "course_name",
			Suggested:      rec.CourseName,
			Required:       true,
			NeedsAttention: rec.HasIssue(constants.IssueCourseNameUnclear),
		},
		{
			Name:           "provider_name",
			Suggested:      rec.ProviderName,
			Required:       true,
			NeedsAttention: rec.HasIssue(constants.IssueProviderUnclear),
		},
		{
			Name:           "credit_hours",
			Suggested:      fmt.Sprintf("%.2f", rec.CreditHours),
			Required:       true,
			NeedsAttention: rec.HasIssue(constants.IssueCreditsUnreasonable),
		},
		{
			Name:           "completion_date",
			Suggested:      suggestedDate,
			Required:       true,
			NeedsAttention: rec.HasIssue(constants.IssueCompletionDateInvalid),
		},
		{
			Name:      "field_of_study",
			Suggested: string(rec.FieldOfStudy),
		},
		{
			Name:      "course_code",
			Suggested: suggestedCode,
		},
		{
			Name:      "delivery_method",
			Suggested: string(rec.DeliveryMethod),
		},
		{
			Name:      "is_ethics",
			Suggested: fmt.Sprintf("%t", rec.IsEthics),
		},
	}}
}
