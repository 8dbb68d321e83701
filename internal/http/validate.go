package http

import "regexp"

var agentIDRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,127}$`)

// isValidAgentID checks the agent id a gateway passes along: 1-128 chars of
// letters, digits, dot, underscore, colon or hyphen, not starting with punctuation.
func isValidAgentID(s string) bool {
	return agentIDRe.MatchString(s)
}
