package translate

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

var (
	WithClient    = withClient
	ClassifyError = classifyError
)

// ChatCompleter exposes the client seam to tests.
type ChatCompleter = chatCompleter
