package quota

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/models"
)

var (
	ErrQuotaExceeded       = errors.New("monthly quota exceeded")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// Monthly request ceilings per subscription tier.
var tierLimits = map[string]int64{
	models.TierFree:    30,
	models.TierPaid:    2000,
	models.TierPremium: 5000,
}

// TierLimit returns the monthly ceiling for a tier. Unknown tiers get the
// free allowance.
func TierLimit(tier string) int64 {
	if limit, ok := tierLimits[tier]; ok {
		return limit
	}
	return tierLimits[models.TierFree]
}

// PeriodKey formats the UTC calendar month a request falls into.
func PeriodKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Usage is a read-only quota snapshot.
type Usage struct {
	Used      int64  `json:"used"`
	Limit     int64  `json:"limit"`
	Remaining int64  `json:"remaining"`
	Tier      string `json:"tier"`
}

// WithinQuota reports whether another request may proceed.
func (u Usage) WithinQuota() bool { return u.Used < u.Limit }

// Service owns the durable monthly quota counter and the credit ledger.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Check reads the current period's usage without mutating it.
func (s *Service) Check(ctx context.Context, userID, tier string) (Usage, error) {
	limit := TierLimit(tier)
	usage := Usage{Limit: limit, Remaining: limit, Tier: tier}

	var rec models.QuotaRecordModel
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND period_key = ?", userID, PeriodKey(time.Now())).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usage, nil
		}
		return usage, err
	}

	usage.Used = rec.RequestCount
	usage.Remaining = limit - rec.RequestCount
	if usage.Remaining < 0 {
		usage.Remaining = 0
	}
	return usage, nil
}

// Increment atomically bumps the current period's counter by one. Called
// only after a request fully succeeded; the upsert creates the period row
// on the first request of a month.
func (s *Service) Increment(ctx context.Context, userID, tier string) error {
	rec := models.QuotaRecordModel{
		UserID:       userID,
		PeriodKey:    PeriodKey(time.Now()),
		RequestCount: 1,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "period_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + 1"),
		}),
	}).Create(&rec).Error
}

// Balance reads the credit balance for the quick pipeline variant.
// A user with no ledger row has zero credits.
func (s *Service) Balance(ctx context.Context, userID string) (int64, error) {
	var row models.CreditModel
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Balance, nil
}

// Deduct atomically removes amount credits, failing with
// ErrInsufficientCredits when the balance cannot cover it. The conditional
// update keeps the ledger correct under concurrent requests.
func (s *Service) Deduct(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&models.CreditModel{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientCredits
	}
	return nil
}
