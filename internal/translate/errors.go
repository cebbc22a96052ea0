package translate

import "errors"

// ErrEmptyAPIKey indicates that the API key was not provided.
var ErrEmptyAPIKey = errors.New("API key is required")

// ErrEmptyCompletion indicates the provider answered with no usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// ErrUnknownProvider indicates a provider name outside the supported set.
var ErrUnknownProvider = errors.New("unknown provider")
