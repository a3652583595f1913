package world

import "errors"

// ErrCancelled is returned by loaders that stopped because CancelLoading
// was called. The World then holds whatever was committed before.
var ErrCancelled = errors.New("loading cancelled")
