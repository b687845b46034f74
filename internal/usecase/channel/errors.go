package channel

import "errors"

// ErrChannelNotFound indicates that the requested channel was not found.
var ErrChannelNotFound = errors.New("channel not found")
