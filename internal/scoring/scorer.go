// Package scoring implements the deterministic URL heuristics and the policy
// that blends the heuristic score with an AI assessment.
package scoring

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/raysh454/safelink/internal/logging"
	"github.com/raysh454/safelink/internal/model"
	"github.com/raysh454/safelink/internal/urlnorm"
	"golang.org/x/text/unicode/norm"
)

// Rule ids, reported in ScoreReport.MatchedRules.
const (
	RuleTransport           = "transport"
	RuleSuspiciousTLD       = "suspicious_tld"
	RuleShortener           = "shortener"
	RuleExcessiveSubdomains = "excessive_subdomains"
	RuleRawIP               = "raw_ip"
	RuleSuspiciousTerms     = "suspicious_terms"
	RuleUnusualCharacters   = "unusual_characters"
	RuleKnownDomain         = "known_domain"
)

// Score deltas. The base score is 100.
const (
	baseScore = 100

	penaltyInsecureTransport = 10
	penaltySuspiciousTLD     = 15
	penaltyShortener         = 25
	penaltySubdomains        = 10
	penaltyRawIP             = 30
	penaltyPerTerm           = 5
	penaltyUnusualChars      = 15
	bonusKnownDomain         = 30

	// maxSubdomains is the number of labels beyond the registrable pair
	// tolerated before the excessive-subdomain warning fires.
	maxSubdomains = 3
)

// Finding texts.
const (
	MsgInsecureTransport  = "Not using secure HTTPS connection"
	MsgSecureTransport    = "Uses secure HTTPS connection"
	MsgShortener          = "Uses a URL shortening service that can hide the real destination"
	MsgExcessiveSubdomain = "Has an unusually large number of subdomains"
	MsgRawIP              = "Uses a raw IP address instead of a domain name"
	MsgUnusualCharacters  = "Domain contains unusual characters"
	MsgKnownDomain        = "Recognized as a well-known legitimate domain"
	MsgNoMajorIssues      = "No major issues detected"
)

var ipv4Host = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)

// Scorer applies the ordered heuristic rules to a normalized URL.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	rules  RuleSet
	logger logging.Logger
}

// NewScorer constructs a Scorer over a private copy of rules.
func NewScorer(rules RuleSet, logger logging.Logger) (*Scorer, error) {
	if logger == nil {
		return nil, errors.New("scoring: nil logger; please pass a valid logging.Logger")
	}
	l := logger.With(logging.Field{Key: "component", Value: "heuristic-scorer"})
	s := &Scorer{
		rules:  rules.normalized(),
		logger: l,
	}
	l.Debug("heuristic scorer constructed",
		logging.Field{Key: "suspicious_tlds", Value: len(s.rules.SuspiciousTLDs)},
		logging.Field{Key: "shorteners", Value: len(s.rules.Shorteners)},
		logging.Field{Key: "keywords", Value: len(s.rules.Keywords)},
		logging.Field{Key: "known_domains", Value: len(s.rules.KnownDomains)})
	return s, nil
}

// finding is a warning tagged with the rule that produced it so a later rule
// can retract it.
type finding struct {
	rule string
	text string
}

// evaluation accumulates rule outcomes for one URL.
type evaluation struct {
	score     int
	warnings  []finding
	positives []string
	matched   []string
	known     bool

	// termsPenalty is the deduction applied by the suspicious-terms rule.
	termsPenalty int
}

func (ev *evaluation) warn(rule, text string, penalty int) {
	ev.score -= penalty
	ev.warnings = append(ev.warnings, finding{rule: rule, text: text})
	ev.matched = append(ev.matched, rule)
}

func (ev *evaluation) positive(rule, text string, bonus int) {
	ev.score += bonus
	ev.positives = append(ev.positives, text)
	ev.matched = append(ev.matched, rule)
}

// Score evaluates u. Rule order only affects the order of findings; all
// deltas are additive.
func (s *Scorer) Score(u *urlnorm.URL) model.ScoreReport {
	ev := &evaluation{score: baseScore}
	host := u.Host
	labels := u.Labels()

	// Transport
	if u.IsSecure() {
		ev.positive(RuleTransport, MsgSecureTransport, 0)
	} else {
		ev.warn(RuleTransport, MsgInsecureTransport, penaltyInsecureTransport)
	}

	// Suspicious TLD
	if tld := labels[len(labels)-1]; slices.Contains(s.rules.SuspiciousTLDs, tld) {
		ev.warn(RuleSuspiciousTLD, fmt.Sprintf("Uses a suspicious top-level domain (.%s)", tld), penaltySuspiciousTLD)
	}

	// Shortener
	for _, short := range s.rules.Shorteners {
		if strings.Contains(host, short) {
			ev.warn(RuleShortener, MsgShortener, penaltyShortener)
			break
		}
	}

	// Excessive subdomains
	if len(labels)-2 > maxSubdomains {
		ev.warn(RuleExcessiveSubdomains, MsgExcessiveSubdomain, penaltySubdomains)
	}

	// Raw IPv4 host
	if ipv4Host.MatchString(host) {
		ev.warn(RuleRawIP, MsgRawIP, penaltyRawIP)
	}

	// Suspicious terms
	if terms := s.matchKeywords(u.Canonical); len(terms) > 0 {
		ev.termsPenalty = penaltyPerTerm * len(terms)
		ev.warn(RuleSuspiciousTerms, "Contains suspicious terms: "+strings.Join(terms, ", "), ev.termsPenalty)
	}

	// Unusual characters
	if hasUnusualHostChars(host) {
		ev.warn(RuleUnusualCharacters, MsgUnusualCharacters, penaltyUnusualChars)
	}

	// Known-legitimate domain: bonus plus refund of the suspicious-terms penalty.
	for _, known := range s.rules.KnownDomains {
		if strings.HasSuffix(host, known) {
			ev.retract(RuleSuspiciousTerms)
			ev.positive(RuleKnownDomain, MsgKnownDomain, bonusKnownDomain)
			ev.known = true
			break
		}
	}

	report := ev.report()
	s.logger.Debug("scored url",
		logging.Field{Key: "url", Value: u.Canonical},
		logging.Field{Key: "score", Value: report.Score},
		logging.Field{Key: "matched_rules", Value: report.MatchedRules})
	return report
}

// retract removes every warning produced by rule and refunds its penalty.
// Only the suspicious-terms rule is retractable.
func (ev *evaluation) retract(rule string) {
	if rule != RuleSuspiciousTerms || ev.termsPenalty == 0 {
		return
	}
	ev.warnings = slices.DeleteFunc(ev.warnings, func(f finding) bool { return f.rule == rule })
	ev.matched = slices.DeleteFunc(ev.matched, func(r string) bool { return r == rule })
	ev.score += ev.termsPenalty
	ev.termsPenalty = 0
}

// report clamps the score and then applies the display-only default positive.
func (ev *evaluation) report() model.ScoreReport {
	score := model.ClampScore(ev.score)

	warnings := make([]string, 0, len(ev.warnings))
	for _, f := range ev.warnings {
		warnings = append(warnings, f.text)
	}

	positives := slices.Clone(ev.positives)
	if len(positives) == 0 && score > model.CautionThreshold {
		positives = append(positives, MsgNoMajorIssues)
	}
	if positives == nil {
		positives = []string{}
	}

	return model.ScoreReport{
		Score:        score,
		Warnings:     warnings,
		Positives:    positives,
		MatchedRules: slices.Clone(ev.matched),
		KnownDomain:  ev.known,
	}
}

// matchKeywords returns the distinct keywords found in the canonical URL, in
// rule-list order. Matching runs on the NFKC-folded, lower-cased text so
// full-width look-alikes match their ASCII keyword.
func (s *Scorer) matchKeywords(canonical string) []string {
	text := strings.ToLower(norm.NFKC.String(canonical))
	var out []string
	for _, kw := range s.rules.Keywords {
		if strings.Contains(text, kw) {
			out = append(out, kw)
		}
	}
	return out
}

func hasUnusualHostChars(host string) bool {
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
		default:
			return true
		}
	}
	return false
}
