// File: internal/agent/errors.go
package agent

// ErrorCode is a string type used for structured failure reporting on
// experiences and outcomes. Using a custom type ensures only predefined
// constants appear where an ErrorCode is expected.
type ErrorCode string

const (
	ErrCodeExecutionFailure ErrorCode = "EXECUTION_FAILURE" // The external collaborator reported or returned an error.
	ErrCodeCancelled        ErrorCode = "SESSION_CANCELLED" // The session's context was cancelled cooperatively.
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"      // Dispatch was rejected while waiting on the rate limiter.
	ErrCodeUnknownAction    ErrorCode = "UNKNOWN_ACTION"    // A recommended action maps to no known module.
)
