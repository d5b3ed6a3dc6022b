package extract

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/supercpe/cpe-tracker/constants"
	"github.com/supercpe/cpe-tracker/internal/entity"
)

// Structured filename convention, e.g.
// "10.00CPE_Code_M252-2025-01-SSDL_Daniel_Ahern_fo.pdf". The leading credits
// token is the gate; code, year-month and the trailing provider token are
// embedded where present.
var (
	reFilenameCredits   = regexp.MustCompile(`^(\d+\.?\d*)CPE_`)
	reFilenameCode      = regexp.MustCompile(`Code_(M\d+)`)
	reFilenameYearMonth = regexp.MustCompile(`(20\d{2})-(\d{2})`)
	reFilenameDelivery  = regexp.MustCompile(`\bSSDL\b|-SSDL`)
)

const filenameConfidence = 0.9

// ExtractFromFilename parses a structured certificate filename. It returns
// nil when the filename does not follow the convention; it never fails.
// Filename evidence is treated as higher-confidence than OCR text, so a
// non-nil result supersedes text extraction for the document.
func (e *Engine) ExtractFromFilename(filename string) *entity.CandidateRecord {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	m := reFilenameCredits.FindStringSubmatch(base)
	if m == nil {
		return nil
	}
	credits, err := strconv.ParseFloat(m[1], 64)
	if err != nil || credits <= 0 || credits > 50 {
		return nil
	}

	rec := entity.CandidateRecord{
		CourseName:     UnknownCourse,
		ProviderName:   UnknownProvider,
		FieldOfStudy:   constants.ClassifyFieldOfStudy(base),
		CreditHours:    credits,
		DeliveryMethod: constants.DeliverySelfStudy,
		IsEthics:       containsEthicsKeyword(base),
		Method:         constants.MethodFilenamePattern,
		Confidence:     filenameConfidence,
	}

	if cm := reFilenameCode.FindStringSubmatch(base); cm != nil {
		code := cm[1]
		rec.CourseCode = &code
		rec.CourseName = "Course " + code
	}

	if ym := reFilenameYearMonth.FindStringSubmatch(base); ym != nil {
		year, _ := strconv.Atoi(ym[1])
		month, _ := strconv.Atoi(ym[2])
		if month >= 1 && month <= 12 {
			d := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			rec.CompletionDate = &d
		}
	}

	if provider := trailingNameToken(base); provider != "" {
		rec.ProviderName = provider
	}

	Validate(&rec)

	e.logger.Debug("filename extraction matched",
		"filename", filename,
		"credits", rec.CreditHours,
		"code", rec.CourseCode,
		"has_date", rec.CompletionDate != nil,
	)
	return &rec
}

// trailingNameToken recovers the provider/participant name from the tail of
// a structured filename: underscore-separated alphabetic tokens after the
// code/date/delivery markers.
func trailingNameToken(base string) string {
	rest := reFilenameCredits.ReplaceAllString(base, "")
	var words []string
	for _, tok := range strings.Split(rest, "_") {
		if tok == "" || tok == "Code" {
			continue
		}
		if reFilenameCode.MatchString("Code_" + tok) {
			continue
		}
		if reFilenameYearMonth.MatchString(tok) || reFilenameDelivery.MatchString(tok) {
			continue
		}
		if len(tok) < 3 || strings.ContainsAny(tok, "0123456789") {
			continue
		}
		words = append(words, tok)
	}
	return strings.Join(words, " ")
}
