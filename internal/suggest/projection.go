package suggest

import "math"

// Projection is the estimated effect of implementing every suggestion.
type Projection struct {
	Baseline      float64 `json:"baseline"`
	RawGain       float64 `json:"rawGain"`
	SuggestedGain float64 `json:"suggestedGain"`
	EffectiveGain float64 `json:"effectiveGain"`
	Projected     float64 `json:"projected"`
}

// Project estimates coverage after the suggestions land. The gain is the
// larger of a flat per-suggestion gain and the sum of declared gains,
// capped at cfg.MaxGain; the result stays within 0..100.
func Project(baseline float64, suggestions []TestSuggestion, cfg ProjectionConfig) Projection {
	raw := float64(len(suggestions)) * cfg.GainPerSuggestion
	suggested := 0.0
	for _, s := range suggestions {
		if s.EstimatedCoverageGain != nil {
			suggested += *s.EstimatedCoverageGain
		}
	}
	effective := math.Min(math.Max(raw, suggested), cfg.MaxGain)
	return Projection{
		Baseline:      baseline,
		RawGain:       raw,
		SuggestedGain: suggested,
		EffectiveGain: effective,
		Projected:     math.Max(0, math.Min(100, baseline+effective)),
	}
}
