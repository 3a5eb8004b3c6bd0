package humanize

import (
	"context"

	"go.uber.org/zap"
)

// pipelineState enumerates the refinement state machine. The two-stage
// "retry with feedback" flow is kept as an explicit machine because the
// non-regression fallback rule is the crux of correctness here.
type pipelineState int

const (
	stateInitial pipelineState = iota
	stateStage1Generated
	stateStage1Detected
	stateSkipStage2
	stateStage2Generated
	stateStage2Detected
	stateFinalized
)

// Pipeline drives stage-1 rewrite, detection, conditional stage-2
// refinement, and the score-gated acceptance decision.
type Pipeline struct {
	gen        Generator
	detectors  []Detector
	threshold  float64
	maxFlagged int
	log        *zap.Logger
}

func NewPipeline(gen Generator, detectors []Detector, threshold float64, maxFlagged int, log *zap.Logger) *Pipeline {
	return &Pipeline{
		gen:        gen,
		detectors:  detectors,
		threshold:  threshold,
		maxFlagged: maxFlagged,
		log:        log,
	}
}

// Run executes the full state machine for one request. The only terminal
// error is a failed stage-1 generation; everything after that degrades
// into a decision that keeps the stage-1 text.
func (p *Pipeline) Run(ctx context.Context, text string, styleExamples []string) (*PipelineDecision, error) {
	docType := Classify(text)
	decision := &PipelineDecision{DocumentType: docType}

	var stage1Text, stage2Text string
	var stage1Results, stage2Results map[string]DetectionResult
	var flagged []FlaggedSentence

	state := stateInitial
	for state != stateFinalized {
		switch state {

		case stateInitial:
			system, prompt := ComposeStage1(text, docType, styleExamples)
			out, err := p.gen.Generate(ctx, system, prompt)
			if err != nil {
				return nil, err
			}
			stage1Text = out
			state = stateStage1Generated

		case stateStage1Generated:
			stage1Results = DetectAll(ctx, p.detectors, stage1Text)
			state = stateStage1Detected

		case stateStage1Detected:
			decision.Stage1 = StageResult{Text: stage1Text, Detections: stage1Results}
			if !p.needsRefinement(stage1Results) {
				state = stateSkipStage2
				break
			}
			flagged = CollectFlagged(stage1Results, p.maxFlagged)
			system, prompt := ComposeStage2(stage1Text, flagged)
			out, err := p.gen.Generate(ctx, system, prompt)
			if err != nil {
				// Refinement failure is local: the stage-1 text stands.
				p.log.Warn("stage-2 generation failed, keeping stage-1 text", zap.Error(err))
				decision.FinalText = stage1Text
				decision.Outcome = OutcomeRefinementUnavailable
				state = stateFinalized
				break
			}
			stage2Text = out
			state = stateStage2Generated

		case stateStage2Generated:
			stage2Results = DetectAll(ctx, p.detectors, stage2Text)
			state = stateStage2Detected

		case stateStage2Detected:
			stage2 := StageResult{Text: stage2Text, Detections: stage2Results}
			decision.Stage2 = &stage2
			if regressed := p.anyDetectorRegressed(stage1Results, stage2Results); regressed != "" {
				p.log.Info("stage-2 rejected, detector regressed",
					zap.String("detector", regressed))
				decision.FinalText = stage1Text
				decision.Outcome = OutcomeStage2Rejected
			} else {
				decision.FinalText = stage2Text
				decision.Outcome = OutcomeStage2Improved
			}
			state = stateFinalized

		case stateSkipStage2:
			decision.FinalText = stage1Text
			decision.Outcome = OutcomeStage2Skipped
			state = stateFinalized
		}
	}

	seen := make(map[string]struct{})
	for _, e := range DetectorErrors(decision.Stage1.Detections) {
		seen[e] = struct{}{}
		decision.DetectorErrors = append(decision.DetectorErrors, e)
	}
	if decision.Stage2 != nil {
		for _, e := range DetectorErrors(decision.Stage2.Detections) {
			if _, dup := seen[e]; dup {
				continue
			}
			decision.DetectorErrors = append(decision.DetectorErrors, e)
		}
	}
	return decision, nil
}

// needsRefinement reports whether any present detector score exceeds the
// refinement threshold. When no detector returned a score at all there is
// nothing to compare against, so refinement is skipped.
func (p *Pipeline) needsRefinement(results map[string]DetectionResult) bool {
	if _, ok := AggregateScore(results); !ok {
		return false
	}
	for _, r := range results {
		if r.Score != nil && *r.Score > p.threshold {
			return true
		}
	}
	return false
}

// anyDetectorRegressed returns the name of the first detector whose
// stage-2 score exceeds its stage-1 score, or "" when stage 2 is
// monotonic-or-equal everywhere. A missing score on either side is
// non-blocking: that detector cannot veto the refinement.
func (p *Pipeline) anyDetectorRegressed(stage1, stage2 map[string]DetectionResult) string {
	for name, s2 := range stage2 {
		s1, ok := stage1[name]
		if !ok || s1.Score == nil || s2.Score == nil {
			continue
		}
		if *s2.Score > *s1.Score {
			return name
		}
	}
	return ""
}
