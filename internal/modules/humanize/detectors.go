package humanize

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	appcfg "github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/config"
)

// Detector scores a text for AI-generated likelihood (0-100). Detect never
// returns a Go error: every failure mode degrades into a DetectionResult
// with Err set and no Score, so one dead vendor cannot fail a request.
type Detector interface {
	Name() string
	Detect(ctx context.Context, text string) DetectionResult
}

// NewDetectors builds the configured detector set. Variant selection
// happens here, at startup, not per request.
func NewDetectors(cfgs []appcfg.DetectorConfig) []Detector {
	out := make([]Detector, 0, len(cfgs))
	for _, dc := range cfgs {
		if !dc.Enabled {
			continue
		}
		timeout := time.Duration(dc.TimeoutSeconds) * time.Second
		switch strings.ToLower(strings.TrimSpace(dc.Type)) {
		case "gptzero":
			out = append(out, &gptZeroDetector{name: dc.Name, apiKey: dc.APIKey, endpoint: dc.Endpoint, timeout: timeout})
		case "sapling":
			out = append(out, &saplingDetector{name: dc.Name, apiKey: dc.APIKey, endpoint: dc.Endpoint, timeout: timeout})
		case "winston":
			out = append(out, &winstonDetector{name: dc.Name, apiKey: dc.APIKey, endpoint: dc.Endpoint, timeout: timeout})
		}
	}
	return out
}

// DetectAll fans out to every detector concurrently and waits for all of
// them to settle. A slow or failed detector never blocks the others beyond
// its own timeout, and never produces a group error.
func DetectAll(ctx context.Context, detectors []Detector, text string) map[string]DetectionResult {
	results := make(map[string]DetectionResult, len(detectors))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range detectors {
		d := d
		g.Go(func() error {
			res := d.Detect(gctx, text)
			mu.Lock()
			results[d.Name()] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// AggregateScore is the arithmetic mean of the present scores. Absent
// scores are excluded from the mean, not treated as zero. ok is false when
// no detector returned a score.
func AggregateScore(results map[string]DetectionResult) (score float64, ok bool) {
	var sum float64
	var n int
	for _, r := range results {
		if r.Score == nil {
			continue
		}
		sum += *r.Score
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// DetectorErrors collects the degradation reasons for the response payload.
func DetectorErrors(results map[string]DetectionResult) []string {
	var errs []string
	for name, r := range results {
		if r.Err != "" {
			errs = append(errs, name+": "+r.Err)
		}
	}
	sort.Strings(errs)
	return errs
}

// CollectFlagged merges every detector's flagged sentences, worst score
// first, deduplicated by sentence text. When a detector reported only
// per-sentence scores, its highest-scoring sentences stand in for an
// explicit flag list.
func CollectFlagged(results map[string]DetectionResult, limit int) []FlaggedSentence {
	best := make(map[string]FlaggedSentence)

	record := func(f FlaggedSentence) {
		prev, seen := best[f.Sentence]
		if !seen || f.Score > prev.Score {
			best[f.Sentence] = f
		}
	}

	for name, r := range results {
		for _, f := range r.FlaggedSentences {
			if f.Detector == "" {
				f.Detector = name
			}
			record(f)
		}
		if len(r.FlaggedSentences) == 0 {
			for _, s := range r.SentenceScores {
				if s.Score >= sentenceFlagThreshold {
					record(FlaggedSentence{Sentence: s.Sentence, Score: s.Score, Detector: name})
				}
			}
		}
	}

	out := make([]FlaggedSentence, 0, len(best))
	for _, f := range best {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Sentence < out[j].Sentence
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// sentenceFlagThreshold is the 0-100 score above which a sentence-level
// score counts as flagged when the vendor gives no explicit flag list.
const sentenceFlagThreshold = 50.0
