package llm

import "errors"

var (
	// ErrEmbeddingUnavailable is returned when the embedding service cannot
	// be reached or returns an error. Retryable by re-submitting the work;
	// never auto-retried here.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationTimeout is returned when a completion exceeds the hard
	// timeout. Callers surface a degraded-service message instead of the
	// raw network error.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrGenerationFailed is returned for any other completion failure.
	ErrGenerationFailed = errors.New("generation failed")
)
