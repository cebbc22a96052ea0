package transcribe

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

var WithClient = withClient

// AudioClient exposes the client seam to tests.
type AudioClient = audioTranscriber

// Function exports for unit testing internal logic.
var (
	ClassifyError    = classifyError
	IsRetryableError = isRetryableError
)
