package ai

import (
	"regexp"
	"strings"
)

var controlCharRegex = regexp.MustCompile(`[\x00-\x1F\x7F]`)

type PostProcessor struct{}

func NewPostProcessor() *PostProcessor {
	return &PostProcessor{}
}

// CleanSummary strips markdown code fences and control characters from
// generated text and normalizes whitespace.
func (p *PostProcessor) CleanSummary(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.Contains(s[:i], " ") {
			// language tag such as ```text
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return p.cleanText(s)
}

// cleanText removes unwanted characters and normalizes whitespace
func (p *PostProcessor) cleanText(s string) string {
	s = controlCharRegex.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
