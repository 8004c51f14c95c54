package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/nikolayk812/storefront/internal/domain"
)

// Error is returned for transport failures, non-2xx answers and
// {success:false} envelopes. It matches domain.ErrRemoteRequestFailed.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, msg)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, msg)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrRemoteRequestFailed}
	}
	return []error{domain.ErrRemoteRequestFailed, e.Err}
}

// Retryable reports whether repeating an idempotent request may succeed.
func (e *Error) Retryable() bool {
	switch {
	case e.Status == http.StatusTooManyRequests, e.Status >= 500:
		return true
	case e.Status != 0:
		return false
	}

	// transport failure: a per-attempt timeout is retryable, a cancelled
	// caller is not
	return e.Err != nil && !errors.Is(e.Err, context.Canceled)
}

// Timeout reports whether the attempt ran out of time.
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

func IsUnauthorized(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Status == http.StatusUnauthorized
}
