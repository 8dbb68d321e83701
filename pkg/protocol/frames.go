// Package protocol defines the JSON wire format of the memory plugin sidecar.
// It is importable by gateways that talk to the sidecar over HTTP.
package protocol

// ProtocolVersion is reported by GET /healthz.
const ProtocolVersion = 1

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Protocol int    `json:"protocol"`
}

// ToolInvokeRequest is the body of POST /v1/tools/invoke.
type ToolInvokeRequest struct {
	Tool    string                 `json:"tool"`
	Args    map[string]interface{} `json:"args"`
	AgentID string                 `json:"agentId,omitempty"`
	DryRun  bool                   `json:"dryRun,omitempty"`
}

// ToolInvokeResponse is the success body of POST /v1/tools/invoke.
// Result is set for real calls; Tool/Parameters for dry runs.
type ToolInvokeResponse struct {
	Result     *ToolOutput            `json:"result,omitempty"`
	Tool       string                 `json:"tool,omitempty"`
	DryRun     bool                   `json:"dryRun,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// ToolOutput carries a tool's text output.
type ToolOutput struct {
	Output  string `json:"output"`
	ForUser string `json:"forUser,omitempty"`
}

// ToolDefinition describes one tool in GET /v1/tools.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ToolListResponse is the body of GET /v1/tools.
type ToolListResponse struct {
	Tools []ToolDefinition `json:"tools"`
}

// HookResponse is the body returned from POST /v1/hooks/{event}.
type HookResponse struct {
	PrependContext string `json:"prependContext,omitempty"`
}

// ErrorShape describes a sidecar error.
type ErrorShape struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorShape as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorShape `json:"error"`
}

// NewErrorResponse creates an error body.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorShape{Code: code, Message: message}}
}
