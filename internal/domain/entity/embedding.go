package entity

import "fmt"

// Embedding is a fixed-dimensional float vector associated 1:1 with an
// Article. D is fixed at install time; changing it requires dropping and
// rebuilding the embeddings table (see SchemaMismatchError).
type Embedding struct {
	ArticleID int64
	Vector    []float32
	UpdatedAt int64 // unix seconds, set by the store on upsert
}

// Validate checks that the vector matches the expected dimension. Dimension
// mismatches are reported as SchemaMismatchError, which is fatal to the
// enclosing driver tick (see spec §7).
func (e *Embedding) Validate(expectedDim int) error {
	if len(e.Vector) == 0 {
		return &ValidationError{Field: "vector", Message: "vector must not be empty"}
	}
	if expectedDim > 0 && len(e.Vector) != expectedDim {
		return &SchemaMismatchError{
			Resource: "embeddings",
			Expected: expectedDim,
			Actual:   len(e.Vector),
		}
	}
	return nil
}

// SchemaMismatchError indicates a vector-dimension (or model input
// dimension) disagreement. It is fatal to the driver tick that raised it and
// requires admin remediation — there is no automatic recovery.
type SchemaMismatchError struct {
	Resource string
	Expected int
	Actual   int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch on %s: expected dimension %d, got %d", e.Resource, e.Expected, e.Actual)
}
