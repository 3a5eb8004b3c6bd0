package humanize

// DocumentType is the label assigned by the classifier.
type DocumentType string

const (
	DocEmail         DocumentType = "email"
	DocMemo          DocumentType = "memo"
	DocAcademicPaper DocumentType = "academic_paper"
	DocResearchPaper DocumentType = "research_paper"
	DocEssay         DocumentType = "essay"
	DocProposal      DocumentType = "proposal"
	DocGeneric       DocumentType = "generic"
)

// SentenceScore is one detector's score for a single sentence.
type SentenceScore struct {
	Sentence string  `json:"sentence"`
	Score    float64 `json:"score"`
}

// FlaggedSentence is a sentence a detector marked as likely AI-generated.
type FlaggedSentence struct {
	Sentence string  `json:"sentence"`
	Score    float64 `json:"score"`
	Detector string  `json:"detector"`
}

// DetectionResult is the outcome of one detector run. A nil Score with a
// non-empty Err means the detector degraded; it never aborts the pipeline.
type DetectionResult struct {
	Score            *float64          `json:"score,omitempty"`
	SentenceScores   []SentenceScore   `json:"sentence_scores,omitempty"`
	FlaggedSentences []FlaggedSentence `json:"flagged_sentences,omitempty"`
	Err              string            `json:"error,omitempty"`
}

// StageResult holds one rewrite stage's text and its detector results.
type StageResult struct {
	Text       string                     `json:"-"`
	Detections map[string]DetectionResult `json:"detections"`
}

// Pipeline outcomes recorded in PipelineDecision.Outcome.
const (
	OutcomeStage2Skipped         = "stage2_skipped"
	OutcomeStage2Improved        = "stage2_improved"
	OutcomeStage2Rejected        = "stage2_rejected"
	OutcomeRefinementUnavailable = "refinement_unavailable"
)

// PipelineDecision is the orchestrator's final verdict for one request.
type PipelineDecision struct {
	FinalText      string
	DocumentType   DocumentType
	Outcome        string
	Stage1         StageResult
	Stage2         *StageResult
	DetectorErrors []string
}

// Stage2Applied reports whether the returned text came from stage 2.
func (d *PipelineDecision) Stage2Applied() bool {
	return d.Outcome == OutcomeStage2Improved
}

type humanizeDTO struct {
	Text     string `json:"text" binding:"required"`
	Examples string `json:"examples"`
}

type detectionSummary struct {
	AggregateScore *float64                   `json:"aggregate_score"`
	Detections     map[string]DetectionResult `json:"detections"`
}

type humanizeResponse struct {
	HumanizedText string           `json:"humanizedText"`
	DocumentType  DocumentType     `json:"documentType"`
	Detection     detectionPayload `json:"detection"`
	Metadata      metadataPayload  `json:"metadata"`
	Quota         quotaPayload     `json:"quota"`
}

type detectionPayload struct {
	Stage1  detectionSummary  `json:"stage1"`
	Stage2  *detectionSummary `json:"stage2"`
	Outcome string            `json:"outcome"`
	Errors  []string          `json:"errors"`
}

type metadataPayload struct {
	ProcessingTimeMs int64 `json:"processingTimeMs"`
	TextLength       int   `json:"textLength"`
	OutputLength     int   `json:"outputLength"`
	Stage2Applied    bool  `json:"stage2Applied"`
}

type quotaPayload struct {
	Used      int64  `json:"used"`
	Limit     int64  `json:"limit"`
	Remaining int64  `json:"remaining"`
	Tier      string `json:"tier"`
}
