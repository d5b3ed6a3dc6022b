package extract

import "regexp"

// rule is one step of a field cascade: a pattern that locates a candidate
// value and a transform that cleans or rejects it. A nil transform accepts
// the raw capture as-is.
type rule struct {
	pattern   *regexp.Regexp
	transform func(raw string) (string, bool)
}

// firstMatch evaluates an ordered cascade against the text. Every match of
// a pattern is offered to its transform in order; the first accepted value
// wins. Rules are independent, so a rejecting transform simply falls
// through to the next candidate or the next rule.
func firstMatch(rules []rule, text string) (string, bool) {
	for _, r := range rules {
		for _, m := range r.pattern.FindAllStringSubmatch(text, -1) {
			raw := m[0]
			if len(m) > 1 && m[1] != "" {
				raw = m[1]
			}
			if r.transform == nil {
				return raw, true
			}
			if v, ok := r.transform(raw); ok {
				return v, true
			}
		}
	}
	return "", false
}
