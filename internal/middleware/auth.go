package middleware

import (
	"errors"
	"strings"

	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/models"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/jwt"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyTier   = "tier"
	apiTokenPrefix   = "hw"
)

// Auth returns a middleware that enforces JWT or API token authentication.
func Auth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, tier, err := resolveIdentity(db, extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyTier, tier)
		c.Next()
	}
}

// resolveIdentity validates a JWT or API token and returns (userID, tier).
func resolveIdentity(db *gorm.DB, rawToken string) (string, string, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return "", "", errors.New("token is required")
	}

	if strings.HasPrefix(token, apiTokenPrefix) {
		return validateAPIToken(db, token)
	}

	claims, err := jwt.Parse(token)
	if err != nil {
		return "", "", err
	}
	tier := claims.Tier
	if tier == "" {
		tier = lookupTier(db, claims.UserID)
	}
	return claims.UserID, tier, nil
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentTier extracts the authenticated user's subscription tier.
func CurrentTier(c *gin.Context) string {
	v, _ := c.Get(ContextKeyTier)
	tier, _ := v.(string)
	if tier == "" {
		return models.TierFree
	}
	return tier
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}

func validateAPIToken(db *gorm.DB, token string) (string, string, error) {
	var row struct {
		UserID string
		Tier   string
	}
	err := db.Table("api_tokens").
		Select("api_tokens.user_id, users.tier").
		Joins("JOIN users ON users.id = api_tokens.user_id").
		Where("api_tokens.token = ? AND (api_tokens.expired_at IS NULL OR api_tokens.expired_at > NOW()) AND api_tokens.deleted_at IS NULL", token).
		Scan(&row).Error
	if err != nil {
		return "", "", err
	}
	if row.UserID == "" {
		return "", "", errors.New("api token not found")
	}
	return row.UserID, row.Tier, nil
}

func lookupTier(db *gorm.DB, userID string) string {
	var user models.UserModel
	if err := db.Select("tier").First(&user, "id = ?", userID).Error; err != nil {
		return models.TierFree
	}
	if user.Tier == "" {
		return models.TierFree
	}
	return user.Tier
}
