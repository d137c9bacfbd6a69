package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery signals a missing or blank search query.
	ErrEmptyQuery = errors.New("query is required")
	// ErrUpstream signals a retrieval service failure.
	ErrUpstream = errors.New("upstream retrieval error")
	// ErrOverviewDisabled signals that overview generation is not configured.
	ErrOverviewDisabled = errors.New("overview generation disabled")
)

// UpstreamStatusError wraps ErrUpstream with the HTTP status and a
// truncated response body from the retrieval service.
type UpstreamStatusError struct {
	Status int
	Body   string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s: status %d %s", ErrUpstream.Error(), e.Status, e.Body)
}

func (e *UpstreamStatusError) Unwrap() error { return ErrUpstream }
