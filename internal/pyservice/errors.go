package pyservice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	// ErrUnavailable means the service could not be reached: connection
	// refused, DNS failure, or the circuit breaker is open.
	ErrUnavailable = errors.New("python service unavailable")
	// ErrTimeout means the call outlived its deadline.
	ErrTimeout = errors.New("python service timed out")
	// ErrVideoNotFound is returned by StreamVideo when the service has no
	// such file.
	ErrVideoNotFound = errors.New("video not found")
)

// HTTPError is a non-2xx answer from the service.
type HTTPError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("python service %s: HTTP %d: %s", e.Endpoint, e.Status, e.Body)
}

// ServiceError is a 2xx answer that reports failure in its body.
type ServiceError struct {
	Endpoint string
	Message  string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("python service %s: %s", e.Endpoint, e.Message)
}

// classify maps a transport error onto the package's sentinels. A
// cancelled caller context is returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: connection refused", ErrUnavailable)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Kind names an error for logs and metrics labels.
func Kind(err error) string {
	var he *HTTPError
	var se *ServiceError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.As(err, &he):
		return "http_error"
	case errors.As(err, &se):
		return "service_error"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
