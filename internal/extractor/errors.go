package extractor

import "errors"

var (
	// ErrNotConfigured means no language-model credential is available. The
	// turn pipeline checks for it before doing any work.
	ErrNotConfigured = errors.New("language model not configured")

	// ErrServiceUnavailable classifies transient upstream failures (overload,
	// 5xx, rate limiting, timeouts). Callers turn it into a friendly
	// "try again shortly" reply.
	ErrServiceUnavailable = errors.New("language model temporarily unavailable")

	// ErrInvalidOutput is returned when the model answer does not match the
	// requested schema.
	ErrInvalidOutput = errors.New("language model returned invalid output")
)
