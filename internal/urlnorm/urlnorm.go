// Package urlnorm turns raw user input into a scheme-qualified URL that both
// the heuristic scorer and the AI adapter operate on.
package urlnorm

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

var (
	// ErrEmptyInput is returned for empty or whitespace-only input.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidURL is returned when the canonical form cannot be parsed as
	// a URL with a usable host.
	ErrInvalidURL = errors.New("invalid url")
)

// DefaultMaxLength bounds accepted input length.
const DefaultMaxLength = 2048

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// URL is a validated, scheme-qualified URL.
type URL struct {
	// Raw is the input exactly as the user supplied it.
	Raw string `json:"raw"`

	// Canonical is the trimmed input with a lower-case scheme; it always
	// starts with "http://" or "https://".
	Canonical string `json:"canonical"`

	Scheme string `json:"scheme"`

	// Host is the lower-cased hostname without port. Unicode labels are kept
	// as typed.
	Host string `json:"host"`

	// ASCIIHost is Host in IDNA (punycode) form when conversion succeeds,
	// otherwise Host.
	ASCIIHost string `json:"ascii_host"`

	Port string `json:"port,omitempty"`
	Path string `json:"path"`
}

// Options controls optional validation policies.
type Options struct {
	// MaxLength rejects longer input with ErrInvalidURL. 0 means DefaultMaxLength.
	MaxLength int
}

// Normalize validates input and returns its normalized form using default options.
//
// Examples:
//
//	"example.com"          -> https://example.com
//	"  HTTP://Example.com" -> http://Example.com (Host "example.com")
//	""                     -> ErrEmptyInput
//	"http:///"             -> ErrInvalidURL
func Normalize(input string) (*URL, error) {
	return NormalizeWithOptions(input, Options{})
}

// NormalizeWithOptions is Normalize with explicit options.
func NormalizeWithOptions(input string, opts Options) (*URL, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, ErrEmptyInput
	}
	if !utf8.ValidString(input) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", ErrInvalidURL)
	}

	maxLen := opts.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	if len(trimmed) > maxLen {
		return nil, fmt.Errorf("%w: input is %d bytes, limit is %d", ErrInvalidURL, len(trimmed), maxLen)
	}

	canonical := withScheme(trimmed)

	u, err := url.Parse(canonical)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, trimmed)
	}
	if strings.ContainsAny(host, " \t\r\n") {
		return nil, fmt.Errorf("%w: illegal characters in host %q", ErrInvalidURL, host)
	}

	asciiHost := host
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		asciiHost = puny
	}

	return &URL{
		Raw:       input,
		Canonical: canonical,
		Scheme:    strings.ToLower(u.Scheme),
		Host:      host,
		ASCIIHost: asciiHost,
		Port:      u.Port(),
		Path:      u.EscapedPath(),
	}, nil
}

// withScheme lower-cases a recognized http/https prefix or prepends https://.
func withScheme(s string) string {
	lower := strings.ToLower(s)
	for _, prefix := range []string{SchemeHTTP + "://", SchemeHTTPS + "://"} {
		if strings.HasPrefix(lower, prefix) {
			return prefix + s[len(prefix):]
		}
	}
	return SchemeHTTPS + "://" + s
}

// IsSecure reports whether the URL uses HTTPS.
func (u *URL) IsSecure() bool {
	return u.Scheme == SchemeHTTPS
}

// Labels returns the dot-separated labels of Host.
func (u *URL) Labels() []string {
	return strings.Split(u.Host, ".")
}

// String returns the canonical form.
func (u *URL) String() string {
	return u.Canonical
}
