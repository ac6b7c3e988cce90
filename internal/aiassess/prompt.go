package aiassess

import "fmt"

const promptTemplate = `You are a security analyst assessing whether a URL is safe to visit.
Judge only from the URL itself: its domain, subdomains, path, query and any
signs of brand impersonation, typosquatting, URL shortening, suspicious
top-level domains or social engineering wording. Do not assume you can open it.

URL: %s

Give a short analysis (at most five sentences) explaining what looks
legitimate and what looks risky. Then finish with a final line of exactly
this form, where the integer is your confidence from 0 (certainly malicious)
to 100 (certainly safe):

SAFETY_SCORE: <integer>`

// BuildPrompt returns the fixed assessment prompt for canonicalURL.
func BuildPrompt(canonicalURL string) string {
	return fmt.Sprintf(promptTemplate, canonicalURL)
}
