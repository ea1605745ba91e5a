package types

import "errors"

// Stage errors. Service code wraps these with %w and callers match with
// errors.Is.
var (
	// ErrConversion indicates the uploaded file could not be converted to
	// markdown.
	ErrConversion = errors.New("document conversion failed")

	// ErrChunking indicates the converted markdown produced no usable chunks.
	ErrChunking = errors.New("document chunking failed")

	// ErrEmbedding indicates the embedding provider failed or returned an
	// inconsistent result.
	ErrEmbedding = errors.New("embedding failed")

	// ErrEngineNotReady indicates a question arrived before any document was
	// processed for the session.
	ErrEngineNotReady = errors.New("no document has been processed yet")

	// ErrGeneration indicates the generation backend failed.
	ErrGeneration = errors.New("answer generation failed")

	// ErrGenerationTimeout indicates the answer did not complete within the
	// configured request timeout.
	ErrGenerationTimeout = errors.New("answer generation timed out")
)
