package models

// HumanizeLogModel records one completed humanization request for
// observability. Scores are the aggregate detector scores per stage;
// a nil score means no detector returned one.
type HumanizeLogModel struct {
	Base
	UserID        string   `json:"user_id"        gorm:"index;not null"`
	DocumentType  string   `json:"document_type"`
	Outcome       string   `json:"outcome"` // stage2_skipped | stage2_improved | stage2_rejected | refinement_unavailable
	Stage1Score   *float64 `json:"stage1_score"`
	Stage2Score   *float64 `json:"stage2_score"`
	InputLength   int      `json:"input_length"`
	OutputLength  int      `json:"output_length"`
	DurationMs    int64    `json:"duration_ms"`
	DetectorCount int      `json:"detector_count"`
	ErrorCount    int      `json:"error_count"`
}

func (HumanizeLogModel) TableName() string { return "humanize_logs" }
