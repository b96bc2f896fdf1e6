package market

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrRateLimited indicates the provider answered HTTP 429. The caller must
// surface it to the user; no automatic retry is performed anywhere.
var ErrRateLimited = errors.New("market: rate limited by provider")

// ErrNotFound indicates the provider does not know the requested resource.
var ErrNotFound = errors.New("market: resource not found")

// StatusError reports a non-2xx HTTP status other than 429.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("market: http status %d: %s", e.StatusCode, e.Body)
}

// DecodeError reports a payload that arrived but did not match the
// expected shape.
type DecodeError struct {
	Operation string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("market: decode %s: %v", e.Operation, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Kind buckets a fetch failure for the degrade policy.
type Kind int

const (
	KindNone Kind = iota
	// KindRateLimited maps HTTP 429: retryable by the user after a delay.
	KindRateLimited
	// KindClient covers 4xx statuses, malformed payloads and missing keys.
	KindClient
	// KindTransport covers network failures and timeouts.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindClient:
		return "client_error"
	case KindTransport:
		return "transport_error"
	default:
		return "none"
	}
}

// Classify maps a provider error onto the failure taxonomy.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrRateLimited) {
		return KindRateLimited
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return KindClient
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return KindClient
	}
	if errors.Is(err, ErrNotFound) {
		return KindClient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransport
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransport
	}
	// Anything unrecognised came from the transport path.
	return KindTransport
}
