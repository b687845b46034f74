package scoredarticle

import "errors"

var (
	errInvalidModelID  = errors.New("model_id must be a positive integer")
	errInvalidMinScore = errors.New("min_score must be a number")
)
