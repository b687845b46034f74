package entity

import (
	"fmt"
	"time"
)

// Model is opaque trained-artifact metadata. The binary artifact for model
// ID M lives at a deterministic filesystem path derivable from M — see
// ArtifactPath.
type Model struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	IsActive  bool
	Notes     string
	ScoreName string // display name for the score this model produces
}

// ArtifactPath returns the deterministic on-disk path for a model's binary
// artifact, per spec §6: "${model_dir}/model-${id}.pkl" in the reference
// implementation. Go implementations keep the same naming convention but a
// different (versioned) payload format — see internal/scoring/artifact.go.
func ArtifactPath(modelDir string, modelID int64) string {
	return fmt.Sprintf("%s/model-%d.bin", modelDir, modelID)
}

// Validate checks required Model fields.
func (m *Model) Validate() error {
	if m.Name == "" {
		return &ValidationError{Field: "name", Message: "name must not be empty"}
	}
	return nil
}
