package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/entity"
)

func TestValidateFlagsPlaceholders(t *testing.T) {
	rec := entity.CandidateRecord{
		CourseName:   UnknownCourse,
		ProviderName: UnknownProvider,
		CreditHours:  0,
	}
	Validate(&rec)

	require.True(t, rec.HasIssue(constants.IssueCourseNameUnclear))
	require.True(t, rec.HasIssue(constants.IssueProviderUnclear))
	require.True(t, rec.HasIssue(constants.IssueCreditsUnreasonable))
	require.True(t, rec.HasIssue(constants.IssueCompletionDateInvalid))
	require.False(t, rec.AutoAcceptable())
}

func TestValidateCleanRecord(t *testing.T) {
	d := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	rec := entity.CandidateRecord{
		CourseName:     "Governmental Accounting Update",
		ProviderName:   "Western CPE",
		CreditHours:    8,
		CompletionDate: &d,
	}
	Validate(&rec)

	require.Empty(t, rec.QualityIssues)
	require.True(t, rec.AutoAcceptable())
}

func TestValidateDoesNotFlagFallbackCredits(t *testing.T) {
	// the 1.0 extraction fallback is in range and must not flag itself
	d := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	rec := entity.CandidateRecord{
		CourseName:     "Some Course Name",
		ProviderName:   "Some Provider",
		CreditHours:    defaultCredits,
		CompletionDate: &d,
	}
	Validate(&rec)
	require.False(t, rec.HasIssue(constants.IssueCreditsUnreasonable))
}

func TestBuildCorrectionFormMarksAttention(t *testing.T) {
	rec := entity.CandidateRecord{
		CourseName:   UnknownCourse,
		ProviderName: "Western CPE",
		CreditHours:  12.5,
		FieldOfStudy: constants.Auditing,
	}
	Validate(&rec)
	form := BuildCorrectionForm(&rec)

	byName := map[string]entity.CorrectionField{}
	for _, f := range form.Fields {
		byName[f.Name] = f
	}

	require.True(t, byName["course_name"].NeedsAttention)
	require.True(t, byName["course_name"].Required)
	require.False(t, byName["provider_name"].NeedsAttention)
	require.Equal(t, "Western CPE", byName["provider_name"].Suggested)
	require.Equal(t, "12.50", byName["credit_hours"].Suggested)
	require.True(t, byName["completion_date"].NeedsAttention)
	require.Empty(t, byName["completion_date"].Suggested)
	require.Equal(t, "Auditing", byName["field_of_study"].Suggested)
	require.False(t, byName["field_of_study"].Required)
}
