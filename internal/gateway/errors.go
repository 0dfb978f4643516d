package gateway

import "fmt"

// FailureKind classifies gateway failures so handlers can pick the right
// status code and user-facing message.
type FailureKind string

const (
	// FailureValidation covers missing or empty inputs.
	FailureValidation FailureKind = "validation"
	// FailurePayloadTooLarge covers uploads over the size ceiling.
	FailurePayloadTooLarge FailureKind = "payload_too_large"
	// FailurePlanRequired covers premium-only capabilities invoked by
	// free-tier callers.
	FailurePlanRequired FailureKind = "plan_required"
	// FailureUpstream covers any provider or media-storage failure.
	FailureUpstream FailureKind = "upstream"
)

// Error is a structured gateway failure. Upstream failures carry the
// provider's message when one was available, a generic fallback otherwise.
type Error struct {
	Kind    FailureKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// UserMessage is the text safe to return to the client.
func (e *Error) UserMessage() string {
	return e.Message
}

func validationError(message string) *Error {
	return &Error{Kind: FailureValidation, Message: message}
}

func upstreamError(message string, cause error) *Error {
	if message == "" {
		message = "An unexpected error occurred."
	}
	return &Error{Kind: FailureUpstream, Message: message, cause: cause}
}
