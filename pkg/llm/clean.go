package llm

import (
	"regexp"
	"strings"
)

var (
	sqlFence  = regexp.MustCompile("(?i)```sql")
	bareFence = regexp.MustCompile("```")
)

// CleanSQL strips Markdown fences and comment lines from model output and
// collapses what is left onto one line.
func CleanSQL(raw string) string {
	text := strings.TrimSpace(raw)
	text = unfence(text, sqlFence)
	text = unfence(text, bareFence)

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") || strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, " "))
}

// unfence keeps the text between the first opening fence and the next closing
// one. A missing closing fence keeps everything after the opening.
func unfence(text string, opening *regexp.Regexp) string {
	loc := opening.FindStringIndex(text)
	if loc == nil {
		return text
	}
	body := text[loc[1]:]
	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}
	return body
}
