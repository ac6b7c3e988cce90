package scoring

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

// RuleSet holds the configurable lists the heuristic rules match against.
// A RuleSet passed to NewScorer is copied and never modified afterwards.
type RuleSet struct {
	// SuspiciousTLDs are matched against the last host label, without a dot.
	SuspiciousTLDs []string `json:"suspicious_tlds"`

	// Shorteners are matched as substrings of the host.
	Shorteners []string `json:"shorteners"`

	// Keywords are matched as substrings of the lower-cased canonical URL.
	Keywords []string `json:"keywords"`

	// KnownDomains are matched as suffixes of the host.
	KnownDomains []string `json:"known_domains"`
}

// DefaultRuleSet returns the built-in lists.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		SuspiciousTLDs: []string{
			"tk", "ml", "ga", "cf", "gq", "xyz", "top", "click", "link", "work",
			"zip", "mov", "country", "kim", "loan", "men", "review", "stream",
			"download", "racing", "win", "bid",
		},
		Shorteners: []string{
			"bit.ly", "tinyurl.com", "goo.gl", "ow.ly", "is.gd", "buff.ly",
			"rebrand.ly", "cutt.ly", "shorturl.at", "tiny.cc", "rb.gy", "short.link",
		},
		Keywords: []string{
			"login", "signin", "verify", "confirm", "update", "banking", "password",
			"wallet", "suspended", "unlock", "urgent", "prize", "winner", "bonus", "free",
		},
		KnownDomains: []string{
			"google.com", "youtube.com", "facebook.com", "amazon.com", "microsoft.com",
			"apple.com", "github.com", "wikipedia.org", "twitter.com", "linkedin.com",
			"netflix.com", "paypal.com", "instagram.com", "reddit.com",
			"stackoverflow.com", "yahoo.com", "bing.com",
		},
	}
}

// LoadRuleSet reads a JSON rule file. Lists missing or empty in the file keep
// their DefaultRuleSet values.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rules file %s: %w", path, err)
	}

	var fromFile RuleSet
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return RuleSet{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	rs := DefaultRuleSet()
	if len(fromFile.SuspiciousTLDs) > 0 {
		rs.SuspiciousTLDs = fromFile.SuspiciousTLDs
	}
	if len(fromFile.Shorteners) > 0 {
		rs.Shorteners = fromFile.Shorteners
	}
	if len(fromFile.Keywords) > 0 {
		rs.Keywords = fromFile.Keywords
	}
	if len(fromFile.KnownDomains) > 0 {
		rs.KnownDomains = fromFile.KnownDomains
	}
	return rs, nil
}

// normalized returns a lower-cased, trimmed, de-duplicated copy of rs.
// A leading dot on TLD entries is dropped.
func (rs RuleSet) normalized() RuleSet {
	return RuleSet{
		SuspiciousTLDs: cleanList(rs.SuspiciousTLDs, "."),
		Shorteners:     cleanList(rs.Shorteners, ""),
		Keywords:       cleanList(rs.Keywords, ""),
		KnownDomains:   cleanList(rs.KnownDomains, ""),
	}
}

func cleanList(in []string, trimPrefix string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if trimPrefix != "" {
			s = strings.TrimPrefix(s, trimPrefix)
		}
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
