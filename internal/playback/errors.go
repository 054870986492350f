package playback

import "errors"

// Failure categories for a segment load. A failed segment carries exactly one
// of these in its error chain so callers can tell a transport problem from a
// backend one from bad audio.
var (
	ErrNetwork  = errors.New("network failure")
	ErrUpstream = errors.New("speech backend failure")
	ErrDecode   = errors.New("audio decode failure")

	// ErrCancelled marks a user-initiated stop. It is an expected outcome,
	// never reported to the listener as a playback failure.
	ErrCancelled = errors.New("playback cancelled")
)
