package humanize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips code fences",
			in:   "```\nplain body text\n```",
			want: "plain body text",
		},
		{
			name: "strips fence with language tag",
			in:   "```text\nhello there\n```",
			want: "hello there",
		},
		{
			name: "strips headings",
			in:   "# Title\n\nBody follows.",
			want: "Title\n\nBody follows.",
		},
		{
			name: "unwraps bold markers",
			in:   "this is **really** and __truly__ plain",
			want: "this is really and truly plain",
		},
		{
			name: "normalizes smart punctuation",
			in:   "“quoted” and ‘single’ with an ellipsis… and a dash – here",
			want: `"quoted" and 'single' with an ellipsis... and a dash - here`,
		},
		{
			name: "collapses blank runs",
			in:   "first\n\n\n\nsecond",
			want: "first\n\nsecond",
		},
		{
			name: "trims surrounding whitespace",
			in:   "  \n padded \n ",
			want: "padded",
		},
		{
			name: "untouched plain text",
			in:   "Nothing to fix here. Two sentences, no markup.",
			want: "Nothing to fix here. Two sentences, no markup.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"```md\n# Head\n**bold** “smart”\n```",
		"plain already",
		"a\n\n\n\nb\n\n\nc",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once))
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "basic terminators",
			in:   "First one. Second one! Third one?",
			want: []string{"First one.", "Second one!", "Third one?"},
		},
		{
			name: "trailing quote after period",
			in:   `He said "done." Then he left.`,
			want: []string{`He said "done."`, "Then he left."},
		},
		{
			name: "single sentence no trailing space",
			in:   "Only one sentence.",
			want: []string{"Only one sentence."},
		},
		{
			name: "empty input",
			in:   "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}
