package entity

import (
	"fmt"
	"time"
)

// BroadcastHours is a 24-bit mask interpreted in the channel's own
// timezone, per Design Note "Timezone arithmetic". Bit h (0-23) set means
// delivery is permitted during wall-clock hour h in Channel.Location().
type BroadcastHours uint32

// AllHours returns a mask with every hour enabled.
func AllHours() BroadcastHours { return BroadcastHours(0xFFFFFF) }

// Allows reports whether the given hour (0-23) is enabled.
func (b BroadcastHours) Allows(hour int) bool {
	if hour < 0 || hour > 23 {
		return false
	}
	return b&(1<<uint(hour)) != 0
}

// Channel is a notification sink.
type Channel struct {
	ID             int64
	Name           string
	Endpoint       string // URL, or "mailto:" form for email
	ScoreThreshold float64
	ModelID        int64
	IsActive       bool
	BroadcastLimit int // 1..100, max entries claimed per dispatch tick
	BroadcastHours BroadcastHours
	Timezone       string // IANA name; "" defaults to UTC
}

// Location resolves the channel's configured timezone, defaulting to UTC
// when unset or invalid.
func (c *Channel) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks channel invariants: threshold in [0,1], broadcast limit in
// [1,100], and that a model is referenced.
func (c *Channel) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Message: "name must not be empty"}
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		return &ValidationError{Field: "score_threshold", Message: "must be in [0,1]"}
	}
	if c.BroadcastLimit < 1 || c.BroadcastLimit > 100 {
		return &ValidationError{Field: "broadcast_limit", Message: "must be in [1,100]"}
	}
	if c.ModelID == 0 {
		return &ValidationError{Field: "model_id", Message: "model_id must reference an existing model"}
	}
	return nil
}

// String implements fmt.Stringer for diagnostic logging.
func (c *Channel) String() string {
	return fmt.Sprintf("Channel(id=%d, name=%q, active=%t)", c.ID, c.Name, c.IsActive)
}
