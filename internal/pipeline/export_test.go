package pipeline

// Exports for testing.

var WithRunID = withRunID
