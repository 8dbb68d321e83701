package tools

// Result is the unified return type from tool execution.
type Result struct {
	ForLLM  string `json:"output"`            // content returned to the agent
	ForUser string `json:"forUser,omitempty"` // content shown to the user, if different
	IsError bool   `json:"isError,omitempty"` // marks error
}

func NewResult(forLLM string) *Result {
	return &Result{ForLLM: forLLM}
}

func ErrorResult(message string) *Result {
	return &Result{ForLLM: message, IsError: true}
}

func UserResult(content string) *Result {
	return &Result{ForLLM: content, ForUser: content}
}

// Text returns what a human should see: ForUser when set, else ForLLM.
func (r *Result) Text() string {
	if r.ForUser != "" {
		return r.ForUser
	}
	return r.ForLLM
}
