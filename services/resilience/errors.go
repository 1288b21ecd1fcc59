package resilience

import "fmt"

// AuthError means the credential exchange itself failed. It is fatal to the
// current call chain: nothing proceeds without a valid bearer credential.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authError: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("authError: %s", e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// SessionInvalidError means the provider rejected our credentials twice in a
// row. The caller must restart from scratch.
type SessionInvalidError struct {
	Op string
}

func (e *SessionInvalidError) Error() string {
	return fmt.Sprintf("sessionInvalid: provider rejected authorization for %s after refresh", e.Op)
}

// SessionExpiredError is an application-level expiry embedded in a success
// response. Never retried; the caller needs a fresh provider session.
type SessionExpiredError struct {
	Op string
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("sessionExpired: provider session no longer valid during %s", e.Op)
}

// TransientError surfaces after the bounded retry budget is exhausted on
// network or server failures.
type TransientError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transientError: %s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// CancelledError reports that the caller's cancellation signal aborted the
// retry loop. Distinct from TransientError so the caller layer can avoid
// rendering a cancelled request as a provider outage.
type CancelledError struct {
	Op  string
	Err error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("cancelled: %s aborted: %v", e.Op, e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

// TransientFault marks a single call failure as retryable (network error,
// 5xx). The provider client wraps failures with this before the executor
// classifies them.
type TransientFault struct {
	Err error
}

func (e *TransientFault) Error() string { return fmt.Sprintf("transient fault: %v", e.Err) }

func (e *TransientFault) Unwrap() error { return e.Err }

// AuthFault marks a call rejected on auth status (401). Triggers the
// refresh-once path in the executor.
type AuthFault struct {
	StatusCode int
}

func (e *AuthFault) Error() string {
	return fmt.Sprintf("auth fault: provider returned status %d", e.StatusCode)
}
