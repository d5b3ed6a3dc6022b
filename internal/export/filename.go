package export

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/supercpe/cpe-tracker/internal/entity"
)

var (
	reInvalidChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	reSpaces       = regexp.MustCompile(`\s+`)
	reUnderscores  = regexp.MustCompile(`_+`)
)

const (
	maxBaseLength       = 200
	maxCourseNameLength = 50
	shortNameBudget     = 45
)

// SanitizeFilename makes a string safe for file system use.
func SanitizeFilename(name string) string {
	name = reInvalidChars.ReplaceAllString(name, "_")
	name = reSpaces.ReplaceAllString(name, "_")
	name = reUnderscores.ReplaceAllString(name, "_")
	if len(name) > maxBaseLength {
		name = name[:maxBaseLength]
	}
	return strings.Trim(name, "_")
}

// SuggestedFilename builds the canonical certificate filename,
// Date_Credits_CourseName plus the original extension, e.g.
// "20250606_15CPE_Defensive_Divorce.pdf". Sortable by date, credits visible
// at a glance.
func SuggestedFilename(rec *entity.CPERecord) string {
	courseName := rec.CourseName
	if courseName == "" {
		courseName = "Unknown_Course"
	}

	dateStr := "NoDate"
	if rec.CompletionDate != nil {
		dateStr = rec.CompletionDate.Format("20060102")
	}

	if len(courseName) > maxCourseNameLength {
		var short strings.Builder
		for _, word := range strings.Fields(courseName) {
			if short.Len()+len(word) >= shortNameBudget {
				break
			}
			short.WriteString(word)
			short.WriteString("_")
		}
		courseName = strings.TrimRight(short.String(), "_")
	}

	base := SanitizeFilename(fmt.Sprintf("%s_%.0fCPE_%s", dateStr, rec.CreditHours, courseName))

	ext := strings.ToLower(filepath.Ext(rec.CertificateName))
	if ext == "" {
		ext = ".pdf"
	}
	return base + ext
}
