package humanize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Vendor clients. Each has its own request shape, response parsing, and
// timeout; all of them funnel failures into DetectionResult.Err.

func failed(reason string) DetectionResult {
	return DetectionResult{Err: reason}
}

func postJSON(ctx context.Context, timeout time.Duration, url string, headers map[string]string, payload interface{}) ([]byte, string) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "encode request: " + err.Error()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "build request: " + err.Error()
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, "timeout"
		}
		return nil, "request: " + err.Error()
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "read response: " + err.Error()
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Sprintf("status %d", resp.StatusCode)
	}
	return raw, ""
}

// gptZeroDetector calls the GPTZero predict endpoint. Scores come back as
// probabilities in [0,1] and are normalized to [0,100].
type gptZeroDetector struct {
	name     string
	apiKey   string
	endpoint string
	timeout  time.Duration
}

func (d *gptZeroDetector) Name() string { return d.name }

func (d *gptZeroDetector) Detect(ctx context.Context, text string) DetectionResult {
	if strings.TrimSpace(d.apiKey) == "" {
		return failed("missing credential")
	}
	url := strings.TrimRight(d.endpoint, "/")
	if url == "" {
		url = "https://api.gptzero.me"
	}
	url += "/v2/predict/text"

	raw, errReason := postJSON(ctx, d.timeout, url,
		map[string]string{"x-api-key": d.apiKey},
		map[string]interface{}{"document": text, "multilingual": false},
	)
	if errReason != "" {
		return failed(errReason)
	}

	var payload struct {
		Documents []struct {
			CompletelyGeneratedProb float64 `json:"completely_generated_prob"`
			Sentences               []struct {
				Sentence      string  `json:"sentence"`
				GeneratedProb float64 `json:"generated_prob"`
			} `json:"sentences"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Documents) == 0 {
		return failed("malformed response body")
	}

	doc := payload.Documents[0]
	score := doc.CompletelyGeneratedProb * 100

	result := DetectionResult{Score: &score}
	for _, s := range doc.Sentences {
		ss := SentenceScore{Sentence: s.Sentence, Score: s.GeneratedProb * 100}
		result.SentenceScores = append(result.SentenceScores, ss)
		if s.GeneratedProb >= 0.5 {
			result.FlaggedSentences = append(result.FlaggedSentences, FlaggedSentence{
				Sentence: s.Sentence,
				Score:    ss.Score,
				Detector: d.name,
			})
		}
	}
	return result
}

// saplingDetector calls the Sapling AI detection endpoint.
type saplingDetector struct {
	name     string
	apiKey   string
	endpoint string
	timeout  time.Duration
}

func (d *saplingDetector) Name() string { return d.name }

func (d *saplingDetector) Detect(ctx context.Context, text string) DetectionResult {
	if strings.TrimSpace(d.apiKey) == "" {
		return failed("missing credential")
	}
	url := strings.TrimRight(d.endpoint, "/")
	if url == "" {
		url = "https://api.sapling.ai"
	}
	url += "/api/v1/aidetect"

	raw, errReason := postJSON(ctx, d.timeout, url, nil, map[string]interface{}{
		"key":          d.apiKey,
		"text":         text,
		"sent_scores":  true,
		"score_string": false,
	})
	if errReason != "" {
		return failed(errReason)
	}

	var payload struct {
		Score          float64 `json:"score"` // [0,1]
		SentenceScores []struct {
			Sentence string  `json:"sentence"`
			Score    float64 `json:"score"`
		} `json:"sentence_scores"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return failed("malformed response body")
	}

	score := payload.Score * 100
	result := DetectionResult{Score: &score}
	for _, s := range payload.SentenceScores {
		result.SentenceScores = append(result.SentenceScores, SentenceScore{
			Sentence: s.Sentence,
			Score:    s.Score * 100,
		})
	}
	return result
}

// winstonDetector calls the Winston AI content-detection endpoint, which
// already reports on a 0-100 scale.
type winstonDetector struct {
	name     string
	apiKey   string
	endpoint string
	timeout  time.Duration
}

func (d *winstonDetector) Name() string { return d.name }

func (d *winstonDetector) Detect(ctx context.Context, text string) DetectionResult {
	if strings.TrimSpace(d.apiKey) == "" {
		return failed("missing credential")
	}
	url := strings.TrimRight(d.endpoint, "/")
	if url == "" {
		url = "https://api.gowinston.ai"
	}
	url += "/v2/ai-content-detection"

	raw, errReason := postJSON(ctx, d.timeout, url,
		map[string]string{"Authorization": "Bearer " + d.apiKey},
		map[string]interface{}{"text": text, "sentences": true},
	)
	if errReason != "" {
		return failed(errReason)
	}

	var payload struct {
		Score     float64 `json:"score"` // 0-100, human likelihood
		Sentences []struct {
			Text  string  `json:"text"`
			Score float64 `json:"score"`
		} `json:"sentences"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return failed("malformed response body")
	}

	// Winston scores human likelihood; invert to AI likelihood.
	score := 100 - payload.Score
	result := DetectionResult{Score: &score}
	for _, s := range payload.Sentences {
		aiScore := 100 - s.Score
		result.SentenceScores = append(result.SentenceScores, SentenceScore{Sentence: s.Text, Score: aiScore})
		if aiScore >= sentenceFlagThreshold {
			result.FlaggedSentences = append(result.FlaggedSentences, FlaggedSentence{
				Sentence: s.Text,
				Score:    aiScore,
				Detector: d.name,
			})
		}
	}
	return result
}
