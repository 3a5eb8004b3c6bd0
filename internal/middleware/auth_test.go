package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/models"
)

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"abc123", "abc123"},
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"  Bearer   abc123  ", "abc123"},
		{"BearerNoSpace", "BearerNoSpace"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeToken(tt.in), "input %q", tt.in)
	}
}

func TestCurrentTier_DefaultsToFree(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, models.TierFree, CurrentTier(c))

	c.Set(ContextKeyTier, models.TierPremium)
	assert.Equal(t, models.TierPremium, CurrentTier(c))

	c.Set(ContextKeyTier, "")
	assert.Equal(t, models.TierFree, CurrentTier(c))
}

func TestCurrentUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, CurrentUserID(c))

	c.Set(ContextKeyUserID, "user-1")
	assert.Equal(t, "user-1", CurrentUserID(c))
}
