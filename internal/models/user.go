package models

import "time"

// Subscription tiers. The tier determines the monthly quota ceiling.
const (
	TierFree    = "free"
	TierPaid    = "paid"
	TierPremium = "premium"
)

// UserModel represents an account that can submit humanization requests.
type UserModel struct {
	Base
	Username      string     `json:"username"        gorm:"uniqueIndex;not null"`
	Mail          string     `json:"mail"`
	Tier          string     `json:"tier"            gorm:"default:'free'"`
	LastLoginTime *time.Time `json:"last_login_time"`
	APITokens     []APIToken `json:"api_tokens,omitempty" gorm:"foreignKey:UserID"`
}

func (UserModel) TableName() string { return "users" }

// APIToken represents a personal API token for programmatic access.
type APIToken struct {
	Base
	UserID    string     `json:"-"          gorm:"index;not null"`
	Token     string     `json:"token"      gorm:"uniqueIndex;not null"`
	Name      string     `json:"name"`
	ExpiredAt *time.Time `json:"expired_at"`
}

func (APIToken) TableName() string { return "api_tokens" }
