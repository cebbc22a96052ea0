package pipeline

import "errors"

// ErrInputUnavailable indicates no transcript could be obtained by any means.
var ErrInputUnavailable = errors.New("no transcript available")
