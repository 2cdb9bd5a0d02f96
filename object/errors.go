package object

import (
	"errors"
	"fmt"
)

// Error kinds. Operations wrap these with context using %w, so callers
// should test with errors.Is.
var (
	ErrInvalidTarget    = errors.New("invalid target")
	ErrNotCallable      = errors.New("not callable")
	ErrNotConstructible = errors.New("not constructible")
	ErrInvalidPrototype = errors.New("invalid prototype")
	ErrPolicyRejected   = errors.New("policy rejected")
	ErrRevokedProxy     = errors.New("proxy revoked")
)

// PolicyError is returned by handlers that deliberately deny an action.
type PolicyError struct {
	Action string // action kind name, e.g. "set"
	Key    string // field key, empty for apply/construct
	Reason string
}

func (e *PolicyError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s rejected: %s", e.Action, e.Reason)
	}
	return fmt.Sprintf("%s %q rejected: %s", e.Action, e.Key, e.Reason)
}

// Unwrap makes errors.Is(err, ErrPolicyRejected) hold for every PolicyError.
func (e *PolicyError) Unwrap() error {
	return ErrPolicyRejected
}

// Reject builds a PolicyError with a formatted reason.
func Reject(action, key, format string, args ...any) *PolicyError {
	return &PolicyError{
		Action: action,
		Key:    key,
		Reason: fmt.Sprintf(format, args...),
	}
}
