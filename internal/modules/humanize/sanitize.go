package humanize

import (
	"regexp"
	"strings"
)

var (
	codeFenceRe = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")
	headingRe   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	boldRe      = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
)

var smartPunctuation = strings.NewReplacer(
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"–", "-", // en dash
	"—", " - ", // em dash
	"…", "...", // ellipsis
	" ", " ", // nbsp
)

// Sanitize strips markdown artifacts the generation model tends to emit
// and normalizes smart punctuation to plain ASCII. Word content is never
// changed, and applying Sanitize twice equals applying it once.
func Sanitize(text string) string {
	out := codeFenceRe.ReplaceAllString(text, "")
	out = headingRe.ReplaceAllString(out, "")
	out = boldRe.ReplaceAllString(out, "$1$2")
	out = smartPunctuation.Replace(out)
	out = collapseBlankRuns(out)
	return strings.TrimSpace(out)
}

// collapseBlankRuns reduces runs of 3+ newlines (left by fence removal) to
// a single blank line.
func collapseBlankRuns(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}

var sentenceEndRe = regexp.MustCompile(`([.!?]["')\]]?)\s+`)

// SplitSentences breaks text into rough sentences. Used to line detector
// sentence scores up with the source text; not linguistically exact.
func SplitSentences(text string) []string {
	marked := sentenceEndRe.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
