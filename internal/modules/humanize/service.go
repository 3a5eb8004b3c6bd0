package humanize

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	appcfg "github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/config"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/models"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/modules/quota"
	redisc "github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/redis"
)

// InvalidInputError rejects a request before any external call is made.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return e.Reason }

// injectionPatterns is the denylist of script/markup fragments that are
// never legitimate prose input.
var injectionPatterns = []string{
	"<script",
	"</script",
	"javascript:",
	"onerror=",
	"onload=",
	"data:text/html",
}

// quotaStore is the durable counter surface the service charges against.
type quotaStore interface {
	Check(ctx context.Context, userID, tier string) (quota.Usage, error)
	Increment(ctx context.Context, userID, tier string) error
	Balance(ctx context.Context, userID string) (int64, error)
	Deduct(ctx context.Context, userID string, amount int64) error
}

// Service owns the humanization workflows: the strict two-stage pipeline
// billed against the monthly quota, and the quick single-threshold variant
// billed per character from the credit ledger.
type Service struct {
	db       *gorm.DB
	rc       *redisc.Client
	pipeline *Pipeline
	quick    *Pipeline
	quotaSvc quotaStore
	cfg      *appcfg.AppConfig
	log      *zap.Logger
}

func NewService(db *gorm.DB, rc *redisc.Client, gen Generator, detectors []Detector, quotaSvc quotaStore, cfg *appcfg.AppConfig, log *zap.Logger) *Service {
	maxFlagged := cfg.Pipeline.MaxFlaggedSentencesStage2
	return &Service{
		db:       db,
		rc:       rc,
		pipeline: NewPipeline(gen, detectors, cfg.Pipeline.RefinementThreshold, maxFlagged, log),
		quick:    NewPipeline(gen, detectors, cfg.Pipeline.QuickThreshold, maxFlagged, log),
		quotaSvc: quotaSvc,
		cfg:      cfg,
		log:      log,
	}
}

// ValidateInput enforces the request preconditions: non-empty, under the
// length ceiling, free of markup injection.
func (s *Service) ValidateInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return &InvalidInputError{Reason: "text must not be empty"}
	}
	if len(text) > s.cfg.Pipeline.MaxTextLength {
		return &InvalidInputError{Reason: fmt.Sprintf("text exceeds the maximum length of %d characters", s.cfg.Pipeline.MaxTextLength)}
	}
	lower := strings.ToLower(text)
	for _, pattern := range injectionPatterns {
		if strings.Contains(lower, pattern) {
			return &InvalidInputError{Reason: "text contains disallowed markup"}
		}
	}
	return nil
}

// ParseStyleExamples splits the free-form examples field into at most
// MaxStyleExamples paragraphs.
func (s *Service) ParseStyleExamples(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
		if len(out) == s.cfg.Pipeline.MaxStyleExamples {
			break
		}
	}
	return out
}

// Humanize runs the strict two-stage pipeline for one request. The quota
// counter is incremented only after the pipeline fully succeeded, and
// never for a cached result or an abandoned request.
func (s *Service) Humanize(ctx context.Context, userID, tier, text, examples string) (*PipelineDecision, quota.Usage, error) {
	usage, err := s.quotaSvc.Check(ctx, userID, tier)
	if err != nil {
		return nil, usage, err
	}
	if !usage.WithinQuota() {
		return nil, usage, quota.ErrQuotaExceeded
	}

	if cached := s.cachedDecision(ctx, text, examples); cached != nil {
		return cached, usage, nil
	}

	decision, err := s.pipeline.Run(ctx, text, s.ParseStyleExamples(examples))
	if err != nil {
		return nil, usage, err
	}
	if ctx.Err() != nil {
		// Caller went away mid-flight; do not charge for abandoned work.
		return nil, usage, ctx.Err()
	}

	if err := s.quotaSvc.Increment(ctx, userID, tier); err != nil {
		s.log.Error("quota increment failed", zap.String("user", userID), zap.Error(err))
	}
	usage.Used++
	if usage.Remaining > 0 {
		usage.Remaining--
	}

	s.cacheDecision(ctx, text, examples, decision)
	return decision, usage, nil
}

// QuickHumanize is the simplified sibling pipeline: same machinery with
// the looser threshold, charged one credit per input character.
func (s *Service) QuickHumanize(ctx context.Context, userID, text string) (*PipelineDecision, int64, error) {
	cost := int64(len(text))
	balance, err := s.quotaSvc.Balance(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if balance < cost {
		return nil, balance, quota.ErrInsufficientCredits
	}

	decision, err := s.quick.Run(ctx, text, nil)
	if err != nil {
		return nil, balance, err
	}
	if ctx.Err() != nil {
		return nil, balance, ctx.Err()
	}

	if err := s.quotaSvc.Deduct(ctx, userID, cost); err != nil {
		return nil, balance, err
	}
	return decision, balance - cost, nil
}

// RecordLog persists an observability row for a completed request.
func (s *Service) RecordLog(userID string, decision *PipelineDecision, inputLen int, duration time.Duration) {
	row := models.HumanizeLogModel{
		UserID:        userID,
		DocumentType:  string(decision.DocumentType),
		Outcome:       decision.Outcome,
		InputLength:   inputLen,
		OutputLength:  len(decision.FinalText),
		DurationMs:    duration.Milliseconds(),
		DetectorCount: len(decision.Stage1.Detections),
		ErrorCount:    len(decision.DetectorErrors),
	}
	if score, ok := AggregateScore(decision.Stage1.Detections); ok {
		row.Stage1Score = &score
	}
	if decision.Stage2 != nil {
		if score, ok := AggregateScore(decision.Stage2.Detections); ok {
			row.Stage2Score = &score
		}
	}
	if err := s.db.Create(&row).Error; err != nil {
		s.log.Warn("humanize log write failed", zap.Error(err))
	}
}

const resultCachePrefix = "hw:result:"

type cachedResult struct {
	Decision PipelineDecision `json:"decision"`
	Text     string           `json:"text"`
	Stage2   string           `json:"stage2,omitempty"`
}

func cacheKey(text, examples string) string {
	h := sha256.Sum256([]byte(text + "\x00" + examples))
	return fmt.Sprintf("%s%x", resultCachePrefix, h)
}

func (s *Service) cachedDecision(ctx context.Context, text, examples string) *PipelineDecision {
	if s.rc == nil {
		return nil
	}
	raw, err := s.rc.Get(ctx, cacheKey(text, examples))
	if err != nil || raw == "" {
		return nil
	}
	var cached cachedResult
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil
	}
	decision := cached.Decision
	decision.Stage1.Text = cached.Text
	if decision.Stage2 != nil {
		decision.Stage2.Text = cached.Stage2
	}
	return &decision
}

func (s *Service) cacheDecision(ctx context.Context, text, examples string, decision *PipelineDecision) {
	if s.rc == nil {
		return
	}
	cached := cachedResult{Decision: *decision, Text: decision.Stage1.Text}
	if decision.Stage2 != nil {
		cached.Stage2 = decision.Stage2.Text
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return
	}
	ttl := time.Duration(s.cfg.Pipeline.ResultCacheTTLMinutes) * time.Minute
	if err := s.rc.Set(ctx, cacheKey(text, examples), raw, ttl); err != nil {
		s.log.Debug("result cache write failed", zap.Error(err))
	}
}
