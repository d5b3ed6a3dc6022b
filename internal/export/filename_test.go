package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/supercpe/cpe-tracker/internal/entity"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestSuggestedFilename(t *testing.T) {
	rec := &entity.CPERecord{
		CourseName:      "Defensive Divorce",
		CreditHours:     15,
		CompletionDate:  datePtr(2025, time.June, 6),
		CertificateName: "scan.PDF",
	}
	require.Equal(t, "20250606_15CPE_Defensive_Divorce.pdf", SuggestedFilename(rec))
}

func TestSuggestedFilenameNoDate(t *testing.T) {
	rec := &entity.CPERecord{
		CourseName:  "Ethics Update",
		CreditHours: 2,
	}
	require.Equal(t, "NoDate_2CPE_Ethics_Update.pdf", SuggestedFilename(rec))
}

func TestSuggestedFilenameTruncatesLongCourseName(t *testing.T) {
	rec := &entity.CPERecord{
		CourseName:     "Advanced Partnership Taxation Strategies for Closely Held Businesses",
		CreditHours:    4,
		CompletionDate: datePtr(2025, time.January, 1),
	}
	require.Equal(t, "20250101_4CPE_Advanced_Partnership_Taxation_Strategies_for.pdf",
		SuggestedFilename(rec))
}

func TestSuggestedFilenameSanitizesCourseName(t *testing.T) {
	rec := &entity.CPERecord{
		CourseName:     `Ethics: A/B "Testing"?`,
		CreditHours:    2,
		CompletionDate: datePtr(2025, time.March, 15),
	}
	require.Equal(t, "20250315_2CPE_Ethics_A_B_Testing.pdf", SuggestedFilename(rec))
}

func TestSuggestedFilenameKeepsOriginalExtension(t *testing.T) {
	rec := &entity.CPERecord{
		CourseName:      "Audit Basics",
		CreditHours:     8,
		CompletionDate:  datePtr(2025, time.February, 1),
		CertificateName: "IMG_0042.JPG",
	}
	require.Equal(t, "20250201_8CPE_Audit_Basics.jpg", SuggestedFilename(rec))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"with spaces here", "with_spaces_here"},
		{`a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"__already__underscored__", "already_underscored"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, SanitizeFilename(tc.in), "input: %q", tc.in)
	}
}
