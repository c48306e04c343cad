package core

import (
	"errors"
	"fmt"
)

// ErrNoCandidates means retrieval returned zero usable candidates. Terminal
// for the request; retrying the same query is unlikely to help without
// reformulation.
var ErrNoCandidates = errors.New("no ecommerce product results found")

// ValidationError marks a retryable synthesis failure: the model's output
// failed to decode or failed schema validation. Structured output is
// expected to always produce conformant JSON, so any deviation is presumed
// transient. Everything else (network, auth, provider errors) is
// infrastructure failure and propagates without this wrapper.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("synthesis validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
