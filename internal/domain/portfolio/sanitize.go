package portfolio

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup from user supplied portfolio content.
// Policies are safe for concurrent use.
type Sanitizer struct {
	line *bluemonday.Policy
	rich *bluemonday.Policy
}

// NewSanitizer builds the strict (single-line) and UGC (long-form) policies.
func NewSanitizer() *Sanitizer {
	rich := bluemonday.UGCPolicy()
	rich.RequireNoReferrerOnLinks(true)
	return &Sanitizer{
		line: bluemonday.StrictPolicy(),
		rich: rich,
	}
}

// Line removes every tag and returns plain text.
func (s *Sanitizer) Line(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.line.Sanitize(value)))
}

// Rich keeps a safe subset of HTML for long-form fields.
func (s *Sanitizer) Rich(value string) string {
	return strings.TrimSpace(s.rich.Sanitize(value))
}

// Lines applies Line to each element and drops empty results.
func (s *Sanitizer) Lines(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if cleaned := s.Line(v); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
