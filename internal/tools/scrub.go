package tools

import "regexp"

// Vendor API key shapes. Only unambiguous key formats are listed so that
// ordinary memory text ("password: ...", "token budget: ...") survives when
// scrubbing is enabled.
var credentialPatterns = []*regexp.Regexp{
	// Mem0 platform keys
	regexp.MustCompile(`m0-[a-zA-Z0-9]{20,}`),
	// Anthropic (before OpenAI: same prefix family)
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9-]{20,}`),
	// OpenAI
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{36}`),
	// Slack tokens
	regexp.MustCompile(`xox[abpr]-[a-zA-Z0-9-]{10,}`),
	// AWS access key ids
	regexp.MustCompile(`AKIA[A-Z0-9]{16}`),
}

const redactedPlaceholder = "[REDACTED]"

// ScrubCredentials replaces known credential patterns in text with [REDACTED].
func ScrubCredentials(text string) string {
	if text == "" {
		return text
	}
	for _, pat := range credentialPatterns {
		text = pat.ReplaceAllString(text, redactedPlaceholder)
	}
	return text
}
