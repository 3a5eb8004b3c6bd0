package models

// QuotaRecordModel tracks monthly request usage per user.
// One row per (user, period); a new period key supersedes the old row
// naturally, nothing is deleted.
type QuotaRecordModel struct {
	Base
	UserID       string `json:"user_id"       gorm:"uniqueIndex:idx_quota_user_period;not null"`
	PeriodKey    string `json:"period_key"    gorm:"uniqueIndex:idx_quota_user_period;not null"` // "YYYY-MM"
	RequestCount int64  `json:"request_count" gorm:"not null;default:0"`
}

func (QuotaRecordModel) TableName() string { return "quota_records" }

// CreditModel is the per-character credit ledger used by the quick
// humanization variant.
type CreditModel struct {
	Base
	UserID  string `json:"user_id" gorm:"uniqueIndex;not null"`
	Balance int64  `json:"balance" gorm:"not null;default:0"`
}

func (CreditModel) TableName() string { return "credits" }
