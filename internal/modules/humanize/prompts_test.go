package humanize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeStage1(t *testing.T) {
	text := "The committee will review the findings next week."

	system, prompt := ComposeStage1(text, DocEssay, nil)

	assert.Contains(t, system, "Rewrite the provided text")
	assert.Contains(t, prompt, "## Document style: essay")
	assert.Contains(t, prompt, "## Techniques")
	assert.Contains(t, prompt, "<<<CONTENT\n"+text+"\nCONTENT")
	assert.NotContains(t, prompt, "SAMPLE", "no sample block without style examples")
}

func TestComposeStage1_StyleExamples(t *testing.T) {
	examples := []string{
		"honestly the meeting ran long but we got there",
		"I keep my notes short. Bullet-ish. Works for me.",
	}

	_, prompt := ComposeStage1("input text", DocGeneric, examples)

	assert.Contains(t, prompt, "<<<SAMPLE 1\n"+examples[0]+"\nSAMPLE")
	assert.Contains(t, prompt, "<<<SAMPLE 2\n"+examples[1]+"\nSAMPLE")
	assert.Contains(t, prompt, "match this voice")
}

func TestComposeStage1_Deterministic(t *testing.T) {
	sys1, p1 := ComposeStage1("same input", DocMemo, []string{"sample"})
	sys2, p2 := ComposeStage1("same input", DocMemo, []string{"sample"})
	assert.Equal(t, sys1, sys2)
	assert.Equal(t, p1, p2)
}

func TestComposeStage2(t *testing.T) {
	flagged := []FlaggedSentence{
		{Sentence: "Furthermore, the system leverages synergies.", Score: 92.5, Detector: "gptzero"},
		{Sentence: "It is important to note the outcome.", Score: 71.0, Detector: "sapling"},
	}

	system, prompt := ComposeStage2("full document body", flagged)

	assert.Contains(t, system, "targeted second pass")
	assert.Contains(t, prompt, "- [score 92.5] Furthermore, the system leverages synergies.")
	assert.Contains(t, prompt, "- [score 71.0] It is important to note the outcome.")
	assert.Contains(t, prompt, "<<<CONTENT\nfull document body\nCONTENT")

	// flagged list precedes the document body
	assert.Less(t,
		strings.Index(prompt, "Flagged sentences"),
		strings.Index(prompt, "<<<CONTENT"))
}

func TestRuleBlock_UnknownTypeFallsBack(t *testing.T) {
	assert.Equal(t, RuleBlock(DocGeneric), RuleBlock(DocumentType("mystery")))
}
