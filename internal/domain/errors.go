package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKeyBusy is returned when another consumer holds the lease for a ledger key.
var ErrKeyBusy = errors.New("ledger key is being processed by another consumer")

// Violation describes one failed field rule.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (v Violation) String() string { return v.Field + ": " + v.Message }

// ValidationError collects every violation found in a payload.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether any violation names field.
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// InvalidEventError means the inbound payload could not be decoded or validated.
type InvalidEventError struct {
	EventType string
	Err       error
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("invalid %s event: %v", e.EventType, e.Err)
}

func (e *InvalidEventError) Unwrap() error { return e.Err }

// UnsupportedEventTypeError means no processor is registered for the event type.
type UnsupportedEventTypeError struct {
	EventType string
}

func (e *UnsupportedEventTypeError) Error() string {
	return fmt.Sprintf("unsupported event type %q", e.EventType)
}

// ContactLookupError wraps a failure to fetch contact details.
type ContactLookupError struct {
	AgreementReference string
	Err                error
}

func (e *ContactLookupError) Error() string {
	return fmt.Sprintf("lookup contact details for %s: %v", e.AgreementReference, e.Err)
}

func (e *ContactLookupError) Unwrap() error { return e.Err }

// OutboundValidationError means a notification was refused before reaching the channel.
type OutboundValidationError struct {
	Kind AddressKind
	Err  *ValidationError
}

func (e *OutboundValidationError) Error() string {
	return fmt.Sprintf("outbound %s notification rejected: %v", e.Kind, e.Err)
}

func (e *OutboundValidationError) Unwrap() error { return e.Err }

// SendError wraps a comms channel failure.
type SendError struct {
	Kind AddressKind
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send %s notification: %v", e.Kind, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// IsFatal reports whether redelivering the message that produced err can never succeed.
func IsFatal(err error) bool {
	var invalid *InvalidEventError
	var unsupported *UnsupportedEventTypeError
	return errors.As(err, &invalid) || errors.As(err, &unsupported)
}
