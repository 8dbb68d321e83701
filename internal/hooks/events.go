// Package hooks implements the plugin's lifecycle hooks: pre-run recall
// (before_agent_start) and post-run capture (agent_end), plus the
// dispatcher a host uses to fan events out to registered handlers.
package hooks

import "strings"

// BeforeAgentStartEvent is the payload of before_agent_start.
type BeforeAgentStartEvent struct {
	Prompt string `json:"prompt"`
}

// AgentEndEvent is the payload of agent_end.
type AgentEndEvent struct {
	Messages []Message `json:"messages"`
	AgentID  string    `json:"agentId,omitempty"`
	Success  *bool     `json:"success,omitempty"`
}

// Outcome is what a hook hands back to the host. A zero Outcome means
// "no change".
type Outcome struct {
	PrependContext string `json:"prependContext,omitempty"`
}

// Message is one conversation turn. Content is either a plain string or a
// list of content blocks, as decoded from JSON.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// Text extracts the message's text: the string itself, or the text blocks
// of a block list joined by newlines. Non-text blocks are ignored.
func (m Message) Text() string {
	switch c := m.Content.(type) {
	case string:
		return c
	case []interface{}:
		var parts []string
		for _, block := range c {
			b, ok := block.(map[string]interface{})
			if !ok {
				continue
			}
			if typ, _ := b["type"].(string); typ != "text" {
				continue
			}
			if text, _ := b["text"].(string); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "\n")
	case []map[string]interface{}:
		blocks := make([]interface{}, len(c))
		for i := range c {
			blocks[i] = c[i]
		}
		return Message{Content: blocks}.Text()
	}
	return ""
}
