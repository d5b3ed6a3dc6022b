package constants

import "strings"

// FieldOfStudy is the canonical NASBA-style subject area for a CPE course.
type FieldOfStudy string

const (
	Accounting FieldOfStudy = "Accounting"
	Taxation   FieldOfStudy = "Taxation"
	Auditing   FieldOfStudy = "Auditing"
	Consulting FieldOfStudy = "Consulting"
	Ethics     FieldOfStudy = "Ethics"
	Regulatory FieldOfStudy = "Regulatory"
	Technology FieldOfStudy = "Technology"
	General    FieldOfStudy = "General"
)

var allFields = []FieldOfStudy{
	Accounting,
	Taxation,
	Auditing,
	Consulting,
	Ethics,
	Regulatory,
	Technology,
	General,
}

// fieldKeywords is an ordered keyword-to-category table. Order matters:
// the first category whose keyword appears in the text wins.
var fieldKeywords = []struct {
	keyword string
	field   FieldOfStudy
}{
	{"accounting", Accounting},
	{"gaap", Accounting},
	{"financial reporting", Accounting},
	{"financial statement", Accounting},
	{"tax", Taxation},
	{"irs", Taxation},
	{"audit", Auditing},
	{"attest", Auditing},
	{"consult", Consulting},
	{"advisory", Consulting},
	{"ethic", Ethics},
	{"professional conduct", Ethics},
	{"professional responsibility", Ethics},
	{"regulat", Regulatory},
	{"compliance", Regulatory},
	{"technolog", Technology},
	{"software", Technology},
	{"cybersecurity", Technology},
	{"information system", Technology},
}

func AsStringSlice() []string {
	result := make([]string, len(allFields))
	for i, f := range allFields {
		result[i] = string(f)
	}
	return result
}

// ClassifyFieldOfStudy returns the first category whose keyword appears in
// the text, or General when nothing matches.
func ClassifyFieldOfStudy(text string) FieldOfStudy {
	normalized := strings.ToLower(text)
	for _, entry := range fieldKeywords {
		if strings.Contains(normalized, entry.keyword) {
			return entry.field
		}
	}
	return General
}

// CanonicalizeFieldOfStudy maps a free-form label (e.g. from a manual
// correction form) onto a canonical category.
func CanonicalizeFieldOfStudy(input string) (FieldOfStudy, bool) {
	if input == "" {
		return General, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]FieldOfStudy{
		"taxes":                Taxation,
		"federal tax":          Taxation,
		"bookkeeping":          Accounting,
		"attestation":          Auditing,
		"fraud":                Auditing,
		"advisory":             Consulting,
		"it":                   Technology,
		"cyber":                Technology,
		"professional conduct": Ethics,
	}

	if f, ok := synonyms[normalized]; ok {
		return f, true
	}

	for _, f := range allFields {
		if normalized == strings.ToLower(string(f)) {
			return f, true
		}
	}

	return General, false
}
