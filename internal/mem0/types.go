package mem0

// Memory is one record held by the Mem0 server. Score is set on search
// results only; the client treats it as opaque and never re-sorts on it.
type Memory struct {
	ID       string                 `json:"id"`
	Memory   string                 `json:"memory"`
	Score    *float64               `json:"score,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// HasScore reports whether the server attached a relevance score.
func (m Memory) HasScore() bool { return m.Score != nil }

// ScoreValue returns the score, or 0 when none was sent.
func (m Memory) ScoreValue() float64 {
	if m.Score == nil {
		return 0
	}
	return *m.Score
}

// AddedMemory is one fact the server derived from an add request.
// Event is the server's decision: ADD, UPDATE, DELETE or NONE.
type AddedMemory struct {
	ID     string `json:"id"`
	Memory string `json:"memory"`
	Event  string `json:"event,omitempty"`
}

// AddResult is the decoded body of POST /memories.
type AddResult struct {
	Success bool
	Results []AddedMemory
}

type addRequest struct {
	Content  string                 `json:"content"`
	UserID   string                 `json:"user_id"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type addResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Results []AddedMemory `json:"results"`
	} `json:"result"`
}

type memoriesResponse struct {
	Memories []Memory `json:"memories"`
}
