package humanize

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/middleware"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/models"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/modules/quota"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/pagination"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/response"
)

type Handler struct {
	svc      *Service
	quotaSvc *quota.Service
	log      *zap.Logger
}

func NewHandler(svc *Service, quotaSvc *quota.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, quotaSvc: quotaSvc, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, rateMW gin.HandlerFunc) {
	g := rg.Group("/humanize", authMW)
	g.POST("", rateMW, h.humanize)
	g.POST("/quick", rateMW, h.quickHumanize)
	g.GET("/usage", h.usage)
	g.GET("/logs", h.listLogs)
}

// POST /humanize  [auth, rate-limited]
func (h *Handler) humanize(c *gin.Context) {
	var dto humanizeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ValidateInput(dto.Text); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.CurrentUserID(c)
	tier := middleware.CurrentTier(c)
	start := time.Now()

	decision, usage, err := h.svc.Humanize(c.Request.Context(), userID, tier, dto.Text, dto.Examples)
	if err != nil {
		h.writePipelineError(c, err, usage)
		return
	}

	h.svc.RecordLog(userID, decision, len(dto.Text), time.Since(start))

	c.JSON(http.StatusOK, humanizeResponse{
		HumanizedText: decision.FinalText,
		DocumentType:  decision.DocumentType,
		Detection:     buildDetectionPayload(decision),
		Metadata: metadataPayload{
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			TextLength:       len(dto.Text),
			OutputLength:     len(decision.FinalText),
			Stage2Applied:    decision.Stage2Applied(),
		},
		Quota: quotaPayload{
			Used:      usage.Used,
			Limit:     usage.Limit,
			Remaining: usage.Remaining,
			Tier:      usage.Tier,
		},
	})
}

// POST /humanize/quick  [auth, rate-limited]
func (h *Handler) quickHumanize(c *gin.Context) {
	var dto humanizeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ValidateInput(dto.Text); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.CurrentUserID(c)
	start := time.Now()

	decision, remaining, err := h.svc.QuickHumanize(c.Request.Context(), userID, dto.Text)
	if err != nil {
		if errors.Is(err, quota.ErrInsufficientCredits) {
			response.PaymentRequired(c, "insufficient credits", gin.H{"balance": remaining, "required": len(dto.Text)})
			return
		}
		h.writePipelineError(c, err, quota.Usage{})
		return
	}

	h.svc.RecordLog(userID, decision, len(dto.Text), time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"humanizedText": decision.FinalText,
		"documentType":  decision.DocumentType,
		"detection":     buildDetectionPayload(decision),
		"metadata": metadataPayload{
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			TextLength:       len(dto.Text),
			OutputLength:     len(decision.FinalText),
			Stage2Applied:    decision.Stage2Applied(),
		},
		"credits": gin.H{"remaining": remaining, "charged": len(dto.Text)},
	})
}

// GET /humanize/usage  [auth]
func (h *Handler) usage(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	tier := middleware.CurrentTier(c)

	usage, err := h.quotaSvc.Check(c.Request.Context(), userID, tier)
	if err != nil {
		h.log.Error("quota check failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	balance, err := h.quotaSvc.Balance(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("credit balance read failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{
		"quota":   usage,
		"credits": gin.H{"balance": balance},
	})
}

// GET /humanize/logs  [auth]
func (h *Handler) listLogs(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	q := pagination.FromContext(c)

	var logs []models.HumanizeLogModel
	query := h.svc.db.Model(&models.HumanizeLogModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	page, err := pagination.Paginate(query, q, &logs)
	if err != nil {
		h.log.Error("humanize log query failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.Paged(c, logs, page)
}

func buildDetectionPayload(d *PipelineDecision) detectionPayload {
	payload := detectionPayload{
		Stage1:  summarizeStage(d.Stage1),
		Outcome: d.Outcome,
	}
	if d.Stage2 != nil {
		s2 := summarizeStage(*d.Stage2)
		payload.Stage2 = &s2
	}
	if len(d.DetectorErrors) > 0 {
		payload.Errors = d.DetectorErrors
	}
	return payload
}

func summarizeStage(stage StageResult) detectionSummary {
	summary := detectionSummary{Detections: stage.Detections}
	if score, ok := AggregateScore(stage.Detections); ok {
		summary.AggregateScore = &score
	}
	return summary
}

// writePipelineError maps service/pipeline errors onto HTTP statuses.
// Vendor detail stays in the logs; the caller sees a generic message.
func (h *Handler) writePipelineError(c *gin.Context, err error, usage quota.Usage) {
	var invalid *InvalidInputError
	var upstream *UpstreamError

	switch {
	case errors.As(err, &invalid):
		response.BadRequest(c, invalid.Reason)
	case errors.Is(err, quota.ErrQuotaExceeded):
		response.TooManyRequests(c, "monthly quota exceeded", gin.H{
			"used": usage.Used, "limit": usage.Limit, "remaining": usage.Remaining, "tier": usage.Tier,
		})
	case errors.As(err, &upstream):
		h.log.Error("generation provider error", zap.Int("status", upstream.Status), zap.String("body", upstream.Body))
		switch upstream.Status {
		case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusForbidden:
			response.ErrorStatus(c, upstream.Status, "AI provider error")
		default:
			response.BadGateway(c, "AI provider error")
		}
	case errors.Is(err, ErrGenerationTimeout):
		h.log.Error("generation timed out")
		response.BadGateway(c, "AI provider timeout")
	case errors.Is(err, ErrGenerationUnavailable):
		h.log.Error("generation unavailable", zap.Error(err))
		response.BadGateway(c, "AI provider error")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
		c.Abort()
	default:
		h.log.Error("humanize request failed", zap.Error(err))
		response.InternalError(c)
	}
}
