package mongo

import (
	"context"
	"time"
)

// WithTimeout bounds a store call by timeout without ever extending a shorter deadline
// already set by the caller.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// IsUnavailable reports errors that mean the store could not be reached in time.
func IsUnavailable(err error) bool {
	return isTimeout(err) || isNetwork(err)
}
