package extract

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/entity"
)

// Placeholder values used when a cascade produces nothing. The quality
// validator recognizes them and routes the record to manual review.
const (
	UnknownCourse   = "Unknown Course"
	UnknownProvider = "Unknown Provider"
)

const (
	creditMin      = 0.5
	creditMax      = 40.0
	defaultCredits = 1.0
)

// earliestCompletion bounds accepted completion dates from below; anything
// older is treated as an OCR misread.
var earliestCompletion = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Engine turns unreliable certificate text into a confidence-scored
// CandidateRecord. It never fails: malformed input degrades to placeholder
// fields plus quality issues.
type Engine struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger, now: time.Now}
}

// Extract runs the per-field cascades over raw certificate text. Fields are
// independent: a miss in one never blocks the others.
func (e *Engine) Extract(raw string) entity.CandidateRecord {
	rec := entity.CandidateRecord{
		CourseName:     UnknownCourse,
		ProviderName:   UnknownProvider,
		FieldOfStudy:   constants.General,
		CreditHours:    defaultCredits,
		DeliveryMethod: constants.DeliverySelfStudy,
		Method:         constants.MethodTextPattern,
	}

	// too short to carry any certificate structure
	if len(strings.TrimSpace(raw)) < 10 {
		Validate(&rec)
		return rec
	}

	found := 0

	if provider, ok := firstMatch(providerRules, raw); ok {
		rec.ProviderName = provider
		found++
	}
	if name, ok := firstMatch(courseNameRules, raw); ok {
		rec.CourseName = name
		found++
	}
	if code, ok := firstMatch(courseCodeRules, raw); ok {
		rec.CourseCode = &code
	}
	if credits, ok := firstMatch(creditRules, raw); ok {
		// transform already guaranteed the range and the numeric shape
		v, _ := strconv.ParseFloat(credits, 64)
		rec.CreditHours = v
		found++
	}
	if iso, ok := firstMatch(e.completionDateRules(), raw); ok {
		d, _ := time.Parse("2006-01-02", iso)
		rec.CompletionDate = &d
		found++
	}
	rec.IsEthics = containsEthicsKeyword(raw)
	rec.FieldOfStudy = constants.ClassifyFieldOfStudy(raw)
	rec.DeliveryMethod = detectDeliveryMethod(raw)

	rec.Confidence = float64(found) / 4.0

	Validate(&rec)

	e.logger.Debug("text extraction complete",
		"course", rec.CourseName,
		"provider", rec.ProviderName,
		"credits", rec.CreditHours,
		"has_date", rec.CompletionDate != nil,
		"confidence", rec.Confidence,
		"issues", len(rec.QualityIssues),
	)
	return rec
}

// --- provider ---

var genericProviderWords = map[string]bool{
	"certificate":               true,
	"completion":                true,
	"awarded":                   true,
	"certificate of completion": true,
}

var knownProviders = []string{
	"Professional Education Services",
	"Western CPE",
	"Surgent CPE",
	"Becker Professional Education",
	"Gleim Publications",
	"Kaplan Financial Education",
	"Checkpoint Learning",
	"AICPA",
}

var (
	reLeadingLine    = regexp.MustCompile(`\A[\s]*([^\r\n]{3,80})`)
	reKnownProvider  = regexp.MustCompile(`(?i)(` + strings.Join(quoteAll(knownProviders), "|") + `)`)
	reProviderSuffix = regexp.MustCompile(`(?m)([A-Z][A-Za-z&.,'\- ]{2,60}(?:Professional|Education|Institute|Academy)(?:[A-Za-z.,' ]{0,40})?)\s*$`)
)

var providerRules = []rule{
	{pattern: reLeadingLine, transform: cleanProvider},
	{pattern: reKnownProvider, transform: canonicalProvider},
	{pattern: reProviderSuffix, transform: cleanProvider},
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = regexp.QuoteMeta(n)
	}
	return out
}

func cleanProvider(raw string) (string, bool) {
	v := collapseWhitespace(strings.Trim(raw, " \t.,:;-"))
	lower := strings.ToLower(v)
	if len(v) < 3 || genericProviderWords[lower] {
		return "", false
	}
	// headings like "CERTIFICATE OF COMPLETION" are not provider names
	if strings.Contains(lower, "certificate") || strings.Contains(lower, "certify") ||
		strings.Contains(lower, "certifies") {
		return "", false
	}
	if !strings.ContainsFunc(v, func(r rune) bool { return r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' }) {
		return "", false
	}
	return v, true
}

// canonicalProvider restores the canonical casing of a known provider hit.
func canonicalProvider(raw string) (string, bool) {
	for _, p := range knownProviders {
		if strings.EqualFold(p, raw) {
			return p, true
		}
	}
	return collapseWhitespace(raw), true
}

// --- course name ---

var courseNameBlacklist = map[string]bool{
	"certificate":                       true,
	"certificate of completion":         true,
	"completion":                        true,
	"this certificate":                  true,
	"continuing professional education": true,
	"participant":                       true,
}

var (
	reSuccessfullyCompleting = regexp.MustCompile(`(?i)for successfully completing[:\s]+([^\r\n]+)`)
	reCompletionOf           = regexp.MustCompile(`(?i)completion of[:\s]+([^\r\n]+)`)
	reCourseLabel            = regexp.MustCompile(`(?i)(?:subject|course|title)\s*:\s*([^\r\n]+)`)
	reLineAfterCertificate   = regexp.MustCompile(`(?i)certificate of completion[^\r\n]*(?:\r?\n)+\s*([^\r\n]+)`)
)

var courseNameRules = []rule{
	{pattern: reSuccessfullyCompleting, transform: cleanCourseName},
	{pattern: reCompletionOf, transform: cleanCourseName},
	{pattern: reCourseLabel, transform: cleanCourseName},
	{pattern: reLineAfterCertificate, transform: cleanCourseName},
}

var reBareCourseCode = regexp.MustCompile(`^[A-Z]\d{2,5}$`)

func cleanCourseName(raw string) (string, bool) {
	v := collapseWhitespace(strings.Trim(raw, " \t\"'.,:;-"))
	if len(v) <= 5 {
		return "", false
	}
	if reBareCourseCode.MatchString(v) {
		return "", false
	}
	if courseNameBlacklist[strings.ToLower(v)] {
		return "", false
	}
	return v, true
}

// --- course code ---

var (
	reCodeLabel = regexp.MustCompile(`(?i)course (?:code|no\.?|number)[:#\s]+([A-Z0-9][A-Z0-9-]{1,11})`)
	reCodeBare  = regexp.MustCompile(`\b([A-Z]\d{2,5})\b`)
)

var courseCodeRules = []rule{
	{pattern: reCodeLabel, transform: func(raw string) (string, bool) {
		return strings.ToUpper(raw), true
	}},
	{pattern: reCodeBare, transform: nil},
}

// --- credit hours ---

var (
	reCreditsBefore = regexp.MustCompile(`(?i)\b(\d{1,2}(?:\.\d{1,2})?)\s*(?:cpe\s*)?(?:hours?|credits?)\b`)
	reCreditsCPE    = regexp.MustCompile(`(?i)\b(\d{1,2}(?:\.\d{1,2})?)\s*cpe\b`)
	reCreditsAfter  = regexp.MustCompile(`(?i)\b(?:hours?|credits?|cpe)[:\s]+(\d{1,2}(?:\.\d{1,2})?)\b`)
)

var creditRules = []rule{
	{pattern: reCreditsBefore, transform: acceptableCredits},
	{pattern: reCreditsCPE, transform: acceptableCredits},
	{pattern: reCreditsAfter, transform: acceptableCredits},
}

func acceptableCredits(raw string) (string, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < creditMin || v > creditMax {
		return "", false
	}
	return raw, true
}

// --- completion date ---

var (
	reDateLabelSlash = regexp.MustCompile(`(?i)(?:completion date|date of completion|completed(?: on)?|date)[:\s]+(\d{1,2}/\d{1,2}/\d{4})`)
	reDateLabelLong  = regexp.MustCompile(`(?i)(?:completion date|date of completion|completed(?: on)?|date)[:\s]+([A-Z][a-z]+ \d{1,2}, \d{4})`)
	reDateSlash      = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
	reDateLong       = regexp.MustCompile(`\b([A-Z][a-z]+ \d{1,2},\s*\d{4})\b`)
	reDateWeekday    = regexp.MustCompile(`\b((?:Mon|Tues|Wednes|Thurs|Fri|Satur|Sun)day, [A-Z][a-z]+ \d{1,2}, \d{4})\b`)
	reDateISO        = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
)

var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Monday, January 2, 2006",
	"2006-01-02",
}

// completionDateRules builds the date cascade with the acceptance window
// bound to the engine's clock: only dates in [2020-01-01, today] pass.
// Nothing here defaults to today; an unparseable date stays nil and is
// tagged for manual entry.
func (e *Engine) completionDateRules() []rule {
	accept := func(raw string) (string, bool) {
		raw = collapseWhitespace(raw)
		today := dateOnly(e.now())
		for _, layout := range dateLayouts {
			d, err := time.Parse(layout, raw)
			if err != nil {
				continue
			}
			d = dateOnly(d)
			if d.Before(earliestCompletion) || d.After(today) {
				continue
			}
			return d.Format("2006-01-02"), true
		}
		return "", false
	}
	return []rule{
		{pattern: reDateLabelSlash, transform: accept},
		{pattern: reDateLabelLong, transform: accept},
		{pattern: reDateWeekday, transform: accept},
		{pattern: reDateSlash, transform: accept},
		{pattern: reDateLong, transform: accept},
		{pattern: reDateISO, transform: accept},
	}
}

// --- ethics / delivery ---

var ethicsKeywords = []string{
	"ethics",
	"ethical",
	"professional responsibility",
	"professional conduct",
	"integrity",
	"independence",
}

func containsEthicsKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range ethicsKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func detectDeliveryMethod(text string) constants.DeliveryMethod {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "group live"), strings.Contains(lower, "in person"):
		return constants.DeliveryLive
	case strings.Contains(lower, "group internet"), strings.Contains(lower, "webinar"):
		return constants.DeliveryOnline
	case strings.Contains(lower, "correspondence"):
		return constants.DeliveryCorrespondence
	default:
		return constants.DeliverySelfStudy
	}
}

// --- shared helpers ---

var reWhitespace = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
