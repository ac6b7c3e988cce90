package aiassess

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/raysh454/safelink/internal/model"
)

// scoreToken also accepts markdown emphasis around the colon, as in
// "**SAFETY_SCORE:** 85" or "__SAFETY_SCORE__: 85".
var scoreToken = regexp.MustCompile(`(?i)SAFETY_SCORE[*_]*:[\s*_]*(-?\d+)`)

// Fallback scores used when the response carries no score token.
const (
	FallbackMalicious = 20
	FallbackCaution   = 50
	FallbackLegit     = 85
	FallbackDefault   = 65
)

// Parsed is the score and display text extracted from a response.
type Parsed struct {
	Score       int
	Explanation string
	Inferred    bool
}

// ParseResponse extracts the first SAFETY_SCORE token, clamped to
// [0, 100], and removes token lines from the explanation. Without a token
// the score is inferred from keywords.
func ParseResponse(text string) Parsed {
	m := scoreToken.FindStringSubmatch(text)
	if m == nil {
		return Parsed{
			Score:       InferScore(text),
			Explanation: strings.TrimSpace(text),
			Inferred:    true,
		}
	}
	return Parsed{
		Score:       parseClamped(m[1]),
		Explanation: stripTokenLines(text),
	}
}

// InferScore maps keywords in text to a fixed score. Precedence is
// malicious over caution over legitimate.
func InferScore(text string) int {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "malicious", "phishing", "scam"):
		return FallbackMalicious
	case containsAny(lower, "caution", "suspicious"):
		return FallbackCaution
	case strings.Contains(lower, "legitimate"):
		return FallbackLegit
	default:
		return FallbackDefault
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func parseClamped(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Only out-of-range values reach here; the regexp guarantees digits.
		if strings.HasPrefix(digits, "-") {
			return model.MinScore
		}
		return model.MaxScore
	}
	return model.ClampScore(n)
}

// stripTokenLines removes every score token and drops lines left with no
// content besides markdown decoration.
func stripTokenLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !scoreToken.MatchString(line) {
			kept = append(kept, line)
			continue
		}
		rest := scoreToken.ReplaceAllString(line, "")
		if strings.Trim(rest, " \t\r*_#>-`") != "" {
			kept = append(kept, strings.TrimRight(rest, " \t\r"))
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
