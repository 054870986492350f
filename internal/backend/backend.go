// Package backend holds the upstream adapters: pure request/response mapping
// against the synthesis services, no orchestration.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured means required upstream credentials are missing. Callers
// should treat it as fatal for the request; retrying cannot help.
var ErrNotConfigured = errors.New("backend credentials not configured")

// ErrBadPayload means the upstream answered 2xx but the body did not carry
// the expected fields.
var ErrBadPayload = errors.New("unexpected upstream response structure")

// StatusError is a non-success HTTP response from an upstream service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Code)
}

// StatusCode implements the classification hook used by the segment loader.
func (e *StatusError) StatusCode() int { return e.Code }

// Composer turns a prompt into story text.
type Composer interface {
	Compose(ctx context.Context, prompt string) (string, error)
}

// Synthesizer turns one text segment into one binary audio blob (MP3).
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
