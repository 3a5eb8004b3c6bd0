package humanize

import (
	"regexp"
	"strings"
)

var (
	emailHeaderRe   = regexp.MustCompile(`(?im)^(to|from|subject)\s*:`)
	citationNumRe   = regexp.MustCompile(`\[\d+\]`)
	citationNameRe  = regexp.MustCompile(`\([A-Z][A-Za-z\-]+(?:\s+(?:&|and)\s+[A-Z][A-Za-z\-]+)?,\s*(?:19|20)\d{2}\)`)
	emailSalutation = []string{"dear ", "hi ", "hello ", "best regards", "kind regards", "sincerely", "yours truly", "warm regards"}
	academicWords   = []string{"abstract", "methodology", "literature review", "hypothesis", "findings", "furthermore", "empirical", "correlation", "statistically", "peer-reviewed", "citation", "et al"}
	researchWords   = []string{"thesis", "dissertation", "experiment", "control group", "sample size"}
	thesisWords     = []string{"argue", "argument", "thesis", "claim", "standpoint", "point of view"}
	concludingWords = []string{"in conclusion", "to conclude", "in summary", "to sum up", "ultimately", "all in all"}
)

// Classify assigns a document-type label from textual-pattern heuristics.
// It is pure and total: unmatched input falls through to DocGeneric.
// First match wins, so the order of checks below is load-bearing.
func Classify(text string) DocumentType {
	lower := strings.ToLower(text)

	if isEmail(text, lower) {
		return DocEmail
	}
	if emailHeaderRe.MatchString(text) && strings.Contains(lower, "memo") {
		return DocMemo
	}
	if isAcademic(lower, text) {
		if containsAny(lower, researchWords) {
			return DocResearchPaper
		}
		return DocAcademicPaper
	}
	if isEssay(lower, len(text)) {
		return DocEssay
	}
	if isProposal(lower) {
		return DocProposal
	}
	return DocGeneric
}

func isEmail(text, lower string) bool {
	if emailHeaderRe.MatchString(text) && !strings.Contains(lower, "memo") {
		return true
	}
	return containsAny(lower, emailSalutation)
}

func isAcademic(lower, text string) bool {
	hits := 0
	for _, kw := range academicWords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	if hits >= 3 {
		return true
	}
	return citationNumRe.MatchString(text) || citationNameRe.MatchString(text)
}

func isEssay(lower string, length int) bool {
	concluding := containsAny(lower, concludingWords)
	if !concluding {
		return false
	}
	if containsAny(lower, thesisWords) {
		return true
	}
	return length >= 500 && length <= 5000
}

func isProposal(lower string) bool {
	if strings.Contains(lower, "proposal") || strings.Contains(lower, "executive summary") {
		return true
	}
	return strings.Contains(lower, "budget") && strings.Contains(lower, "timeline")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
