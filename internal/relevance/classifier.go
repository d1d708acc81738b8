// Package relevance decides whether a meeting touches the cement-plant
// kiln vocabulary that makes the internal Knowledge Hub data worth pulling.
package relevance

import (
	"regexp"
	"strings"

	"github.com/rahul/meetprep/internal/meeting"
)

// Keywords is the fixed sector vocabulary. Any single hit is enough.
var Keywords = []string{
	`\bcement\b`,
	`\bcement\s*plant\b`,
	`\bkiln\b`,
	`\brotary\s*kiln\b`,
	`\bcalciner\b`,
	`\bburner\b`,
}

var patterns = compile(Keywords)

func compile(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}

func blob(companyName, objective, focusAreas string) string {
	return strings.ToLower(companyName + " " + objective + " " + focusAreas)
}

// Classify reports whether any keyword pattern appears in the combined text.
func Classify(companyName, objective, focusAreas string) bool {
	text := blob(companyName, objective, focusAreas)
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ClassifyRequest is Classify over the request fields.
func ClassifyRequest(req meeting.Request) bool {
	return Classify(req.CompanyName, req.Objective, req.FocusAreas)
}

// Matches returns the keyword patterns that hit, in vocabulary order.
func Matches(companyName, objective, focusAreas string) []string {
	text := blob(companyName, objective, focusAreas)
	var hits []string
	for i, re := range patterns {
		if re.MatchString(text) {
			hits = append(hits, Keywords[i])
		}
	}
	return hits
}
