package dump

import (
	"context"
	"errors"
	"net"
	"net/url"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// fatalError marks a job-terminal condition that must not be retried:
// the caller is not authorized, or the resource kind vanished between
// discovery and listing.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

func isFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}

// isTransient reports whether an API call failure is worth retrying:
// rate limiting, server-side 5xx, timeouts, and transport-level failures
// such as connection resets. Authentication, authorization, and NotFound
// errors are never transient.
func isTransient(err error) bool {
	switch {
	case apierrors.IsUnauthorized(err),
		apierrors.IsForbidden(err),
		apierrors.IsNotFound(err):
		return false
	case apierrors.IsTooManyRequests(err),
		apierrors.IsServerTimeout(err),
		apierrors.IsTimeout(err),
		apierrors.IsInternalError(err),
		apierrors.IsServiceUnavailable(err),
		apierrors.IsUnexpectedServerError(err):
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
