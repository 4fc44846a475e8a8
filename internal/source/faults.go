package source

import (
	"errors"
	"fmt"
)

// AuthError reports an expired upstream session. It is user-actionable:
// the caller surfaces LoginURL so the user can re-authenticate, and the
// refresh cycle records it separately from transient failures.
type AuthError struct {
	SourceKey string
	Message   string
	LoginURL  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.SourceKey, e.Message)
}

// NetError reports a transient upstream failure (non-2xx, transport error).
// It is logged and rendered as an empty section, never blocks siblings.
type NetError struct {
	SourceKey  string
	StatusCode int
	Err        error
}

func (e *NetError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.SourceKey, e.Err)
	}
	return fmt.Sprintf("%s: upstream returned status %d", e.SourceKey, e.StatusCode)
}

func (e *NetError) Unwrap() error { return e.Err }

// AsAuthError unwraps err into an *AuthError if it is one.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
