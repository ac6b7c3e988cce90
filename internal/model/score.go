package model

// Safety thresholds shared by scoring, the AI label and every presentation
// layer. Callers must read these rather than recompute their own cut-offs.
const (
	// SafeThreshold is the minimum score labeled "Safe".
	SafeThreshold = 80

	// CautionThreshold is the minimum score labeled "Exercise Caution".
	CautionThreshold = 50

	MinScore = 0
	MaxScore = 100
)

// Labels produced by SafetyLabel.
const (
	LabelSafe              = "Safe"
	LabelCaution           = "Exercise Caution"
	LabelPotentiallyUnsafe = "Potentially Unsafe"
)

// SafetyLabel maps a 0..100 score to its qualitative label.
func SafetyLabel(score int) string {
	switch {
	case score >= SafeThreshold:
		return LabelSafe
	case score >= CautionThreshold:
		return LabelCaution
	default:
		return LabelPotentiallyUnsafe
	}
}

// ClampScore bounds score to [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// ScoreReport is the heuristic scorer's output for a single URL.
// Example:
//
//	{
//	  "score": 60,
//	  "warnings": [
//	    "Not using secure HTTPS connection",
//	    "Uses a raw IP address instead of a domain name"
//	  ],
//	  "positives": ["No major issues detected"],
//	  "matched_rules": ["transport", "raw_ip"],
//	  "known_domain": false
//	}
type ScoreReport struct {
	// Score is the clamped heuristic score [0 .. 100]; higher is safer.
	Score int `json:"score"`

	// Warnings are rule-triggered findings in rule-evaluation order.
	Warnings []string `json:"warnings"`

	// Positives are positive indicators in rule-evaluation order. The
	// default positive is appended only as a display fallback.
	Positives []string `json:"positives"`

	// MatchedRules lists the ids of rules that produced a finding.
	MatchedRules []string `json:"matched_rules,omitempty"`

	// KnownDomain is true when the known-legitimate-domain rule matched.
	KnownDomain bool `json:"known_domain"`
}
