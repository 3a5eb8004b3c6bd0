package humanize

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/modules/quota"
)

func newValidationRouter(t *testing.T) (*gin.Engine, *scriptedGenerator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gen := &scriptedGenerator{}
	svc := newValidationService()
	svc.log = zap.NewNop()
	svc.pipeline = newTestPipeline(gen, nil)

	h := NewHandler(svc, nil, zap.NewNop())
	passthrough := func(c *gin.Context) { c.Next() }

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v2"), passthrough, passthrough)
	return r, gen
}

func postJSONBody(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHumanizeHandler_RejectsBadRequests(t *testing.T) {
	r, gen := newValidationRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{`},
		{name: "missing text field", body: `{}`},
		{name: "empty text", body: `{"text": "   "}`},
		{name: "oversized text", body: `{"text": "` + strings.Repeat("a", 200) + `"}`},
		{name: "markup injection", body: `{"text": "hello <script>x</script>"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSONBody(r, "/api/v2/humanize", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"ok":0`)
		})
	}

	assert.Equal(t, 0, gen.calls, "invalid requests never reach the generator")
}

func TestQuickHandler_RejectsBadRequests(t *testing.T) {
	r, gen := newValidationRouter(t)

	w := postJSONBody(r, "/api/v2/humanize/quick", `{"text": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, gen.calls)
}

func newQuotaRouter(t *testing.T, fq *fakeQuota) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gen := &scriptedGenerator{outputs: []string{"rewritten"}}
	svc := newQuotaTestService(gen, nil, fq)

	h := NewHandler(svc, nil, zap.NewNop())
	passthrough := func(c *gin.Context) { c.Next() }

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v2"), passthrough, passthrough)
	return r
}

func TestHumanizeHandler_QuotaExhaustedIs429(t *testing.T) {
	fq := &fakeQuota{usage: quota.Usage{Used: 30, Limit: 30, Remaining: 0, Tier: "free"}}
	r := newQuotaRouter(t, fq)

	w := postJSONBody(r, "/api/v2/humanize", `{"text": "ordinary input text"}`)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"used":30`)
	assert.Contains(t, w.Body.String(), `"limit":30`)
}

func TestQuickHandler_InsufficientCreditsIs402(t *testing.T) {
	fq := &fakeQuota{balance: 2}
	r := newQuotaRouter(t, fq)

	w := postJSONBody(r, "/api/v2/humanize/quick", `{"text": "ordinary input text"}`)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":2`)
}
