package lang

import "errors"

// ErrInvalid indicates an invalid or unknown language code.
var ErrInvalid = errors.New("invalid language code")
