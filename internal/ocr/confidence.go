package ocr

import (
	"regexp"
	"strings"
)

var (
	reDateish   = regexp.MustCompile(`\b20\d{2}\b|\d{1,2}/\d{1,2}/\d{2,4}`)
	reCreditish = regexp.MustCompile(`\b\d+(\.\d+)?\s*(cpe|credit|hour)`)
	reCertish   = regexp.MustCompile(`certificate|completion|awarded|successfully`)
	reBoxNoise  = regexp.MustCompile(`(?m)^[|_\-=~\s]{4,}$`)
)

// heuristicConfidence scores decoded text by the artifacts a CPE
// certificate is expected to carry. Each hit adds a fixed boost.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2)
	if reDateish.MatchString(txtL) {
		score += 0.2
	}
	if reCreditish.MatchString(txtL) {
		score += 0.2
	}
	if reCertish.MatchString(txtL) {
		score += 0.2
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Normalize strips OCR line noise and collapses excessive blank lines while
// preserving line structure, which the extraction cascades depend on.
func Normalize(txt string) string {
	txt = reBoxNoise.ReplaceAllString(txt, "")
	txt = strings.ReplaceAll(txt, "\r\n", "\n")

	var out []string
	blank := 0
	for _, line := range strings.Split(txt, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			line = ""
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
