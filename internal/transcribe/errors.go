package transcribe

import "errors"

// ErrEmptyAPIKey indicates that the API key was not provided.
var ErrEmptyAPIKey = errors.New("API key is required")

// ErrEmptyAudio indicates an audio part with no data.
var ErrEmptyAudio = errors.New("audio part is empty")
