package model

import "errors"

// ErrModelNotFound indicates that the requested model was not found.
var ErrModelNotFound = errors.New("model not found")
