package scoring

import "github.com/raysh454/safelink/internal/model"

// Blend weights in tenths. Known domains trust the AI more because heuristic
// false positives are more likely there.
const (
	knownDomainHeuristicWeight = 3
	knownDomainAIWeight        = 7
	defaultHeuristicWeight     = 5
	defaultAIWeight            = 5
)

// Blend combines the heuristic report with an optional AI assessment. With no
// scored assessment the heuristic score is returned unchanged.
//
// The weighted sum is rounded half away from zero; both inputs are clamped
// first so the sum is never negative and integer tenths keep .5 cases exact.
//
// Examples:
//
//	base 80, ai 40, known  -> round(24 + 28)     = 52
//	base 75, ai 50, known  -> round(22.5 + 35)   = 58
//	base 81, ai 40, !known -> round(40.5 + 20)   = 61
func Blend(base model.ScoreReport, ai *model.Assessment, isKnownDomain bool) int {
	if !ai.Scored() {
		return base.Score
	}

	hw, aw := defaultHeuristicWeight, defaultAIWeight
	if isKnownDomain {
		hw, aw = knownDomainHeuristicWeight, knownDomainAIWeight
	}

	tenths := hw*model.ClampScore(base.Score) + aw*model.ClampScore(ai.Score)
	return model.ClampScore((tenths + 5) / 10)
}
