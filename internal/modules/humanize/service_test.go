package humanize

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcfg "github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/config"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/modules/quota"
)

func newValidationService() *Service {
	return &Service{cfg: &appcfg.AppConfig{
		Pipeline: appcfg.PipelineConfig{
			MaxTextLength:    100,
			MaxStyleExamples: 2,
		},
	}}
}

func TestValidateInput(t *testing.T) {
	s := newValidationService()

	tests := []struct {
		name       string
		text       string
		wantReason string
	}{
		{name: "valid text", text: "A perfectly ordinary paragraph."},
		{name: "empty", text: "", wantReason: "text must not be empty"},
		{name: "whitespace only", text: "   \n\t ", wantReason: "text must not be empty"},
		{name: "over length ceiling", text: strings.Repeat("a", 101), wantReason: "text exceeds the maximum length of 100 characters"},
		{name: "at length ceiling", text: strings.Repeat("a", 100)},
		{name: "script tag", text: "hello <script>alert(1)</script>", wantReason: "text contains disallowed markup"},
		{name: "uppercase script tag", text: "hello <SCRIPT>alert(1)", wantReason: "text contains disallowed markup"},
		{name: "javascript scheme", text: "click javascript:doEvil()", wantReason: "text contains disallowed markup"},
		{name: "event handler", text: `<img onerror=x src=y>`, wantReason: "text contains disallowed markup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateInput(tt.text)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			var invalid *InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantReason, invalid.Reason)
		})
	}
}

func TestValidateInput_RejectsBeforeAnyExternalCall(t *testing.T) {
	gen := &scriptedGenerator{}
	det := &scriptedDetector{name: "gptzero"}
	s := newValidationService()
	s.pipeline = newTestPipeline(gen, []Detector{det})

	require.Error(t, s.ValidateInput("<script>boom</script>"))
	assert.Equal(t, 0, gen.calls)
	assert.Equal(t, 0, det.calls)
}

// fakeQuota satisfies the service's durable counter surface in memory.
type fakeQuota struct {
	usage          quota.Usage
	balance        int64
	incrementCalls int
	deductCalls    int
	deducted       int64
}

func (f *fakeQuota) Check(_ context.Context, _, _ string) (quota.Usage, error) {
	return f.usage, nil
}

func (f *fakeQuota) Increment(_ context.Context, _, _ string) error {
	f.incrementCalls++
	return nil
}

func (f *fakeQuota) Balance(_ context.Context, _ string) (int64, error) {
	return f.balance, nil
}

func (f *fakeQuota) Deduct(_ context.Context, _ string, amount int64) error {
	f.deductCalls++
	if f.balance < amount {
		return quota.ErrInsufficientCredits
	}
	f.balance -= amount
	f.deducted += amount
	return nil
}

func newQuotaTestService(gen Generator, detectors []Detector, fq *fakeQuota) *Service {
	cfg := &appcfg.AppConfig{Pipeline: appcfg.PipelineConfig{
		MaxTextLength:    10000,
		MaxStyleExamples: 5,
	}}
	return &Service{
		pipeline: NewPipeline(gen, detectors, 3.0, 20, zap.NewNop()),
		quick:    NewPipeline(gen, detectors, 8.0, 20, zap.NewNop()),
		quotaSvc: fq,
		cfg:      cfg,
		log:      zap.NewNop(),
	}
}

func TestHumanize_ChargesExactlyOncePerSuccess(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"rewritten"}}
	det := &scriptedDetector{name: "gptzero", results: []DetectionResult{{Score: scoreOf(1)}}}
	fq := &fakeQuota{usage: quota.Usage{Used: 2, Limit: 30, Remaining: 28, Tier: "free"}}
	s := newQuotaTestService(gen, []Detector{det}, fq)

	decision, usage, err := s.Humanize(context.Background(), "user-1", "free", "ordinary input text", "")
	require.NoError(t, err)

	assert.Equal(t, "rewritten", decision.FinalText)
	assert.Equal(t, 1, fq.incrementCalls)
	assert.Equal(t, int64(3), usage.Used)
	assert.Equal(t, int64(27), usage.Remaining)
}

func TestHumanize_RejectsAtQuotaLimit(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"rewritten"}}
	fq := &fakeQuota{usage: quota.Usage{Used: 30, Limit: 30, Remaining: 0, Tier: "free"}}
	s := newQuotaTestService(gen, nil, fq)

	_, usage, err := s.Humanize(context.Background(), "user-1", "free", "ordinary input text", "")

	assert.ErrorIs(t, err, quota.ErrQuotaExceeded)
	assert.Equal(t, int64(30), usage.Used, "rejection reports current usage")
	assert.Equal(t, 0, gen.calls, "no external call once the quota is exhausted")
	assert.Equal(t, 0, fq.incrementCalls)
}

func TestHumanize_AbandonedRequestNotCharged(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"rewritten"}}
	det := &scriptedDetector{name: "gptzero", results: []DetectionResult{{Score: scoreOf(1)}}}
	fq := &fakeQuota{usage: quota.Usage{Used: 2, Limit: 30, Remaining: 28, Tier: "free"}}
	s := newQuotaTestService(gen, []Detector{det}, fq)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Humanize(ctx, "user-1", "free", "ordinary input text", "")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fq.incrementCalls, "a caller that went away is not charged")
}

func TestQuickHumanize_ChargesPerCharacter(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"rewritten"}}
	det := &scriptedDetector{name: "gptzero", results: []DetectionResult{{Score: scoreOf(1)}}}
	fq := &fakeQuota{balance: 100}
	s := newQuotaTestService(gen, []Detector{det}, fq)

	text := "hello"
	decision, remaining, err := s.QuickHumanize(context.Background(), "user-1", text)
	require.NoError(t, err)

	assert.Equal(t, "rewritten", decision.FinalText)
	assert.Equal(t, 1, fq.deductCalls)
	assert.Equal(t, int64(len(text)), fq.deducted)
	assert.Equal(t, int64(95), remaining)
}

func TestQuickHumanize_InsufficientCredits(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"rewritten"}}
	fq := &fakeQuota{balance: 3}
	s := newQuotaTestService(gen, nil, fq)

	_, balance, err := s.QuickHumanize(context.Background(), "user-1", "hello")

	assert.ErrorIs(t, err, quota.ErrInsufficientCredits)
	assert.Equal(t, int64(3), balance, "rejection reports the current balance")
	assert.Equal(t, 0, gen.calls, "no external call without the credits to pay for it")
	assert.Equal(t, 0, fq.deductCalls)
}

func TestParseStyleExamples(t *testing.T) {
	s := newValidationService()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "whitespace only", raw: "  \n ", want: nil},
		{name: "single paragraph", raw: "just one sample", want: []string{"just one sample"}},
		{
			name: "paragraphs split on blank lines",
			raw:  "first sample\n\nsecond sample",
			want: []string{"first sample", "second sample"},
		},
		{
			name: "capped at the configured maximum",
			raw:  "one\n\ntwo\n\nthree\n\nfour",
			want: []string{"one", "two"},
		},
		{
			name: "blank paragraphs skipped",
			raw:  "one\n\n   \n\ntwo",
			want: []string{"one", "two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ParseStyleExamples(tt.raw))
		})
	}
}
