package protocol

// Error codes returned in ErrorShape.Code by the sidecar.
const (
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrUnavailable       = "UNAVAILABLE"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrNotFound          = "NOT_FOUND"
	ErrResourceExhausted = "RESOURCE_EXHAUSTED"
	ErrToolFailed        = "TOOL_FAILED"
	ErrInternal          = "INTERNAL"
)
