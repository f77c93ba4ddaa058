package errors

import "fmt"

var (
	// ErrNotFound covers unknown user, conversation or message references.
	ErrNotFound = fmt.Errorf("not found")
	// ErrForbidden is returned when the caller is not a participant of the
	// target conversation or not the subject user.
	ErrForbidden = fmt.Errorf("forbidden")
	// ErrConflict signals a concurrent mutation invalidated an expected
	// precondition, e.g. a stale seen watermark.
	ErrConflict = fmt.Errorf("conflict")
	// ErrOverflow signals a subscription was dropped because its consumer
	// fell behind the bounded event queue. The consumer must resubscribe.
	ErrOverflow = fmt.Errorf("subscription overflow")
	// ErrUnavailable marks a temporarily unreachable store. Retryable.
	ErrUnavailable = fmt.Errorf("store unavailable")
	// ErrAuthFailure marks an identity provider rejection. Not retried.
	ErrAuthFailure = fmt.Errorf("authentication failure")

	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidContent     = fmt.Errorf("message must carry exactly one of body or media ref")
	ErrSamePair           = fmt.Errorf("a conversation requires two distinct users")
)
