package scoring

import (
	"fmt"
	"os"
	"sync"

	"papersorter/internal/domain/entity"
)

// Cache loads and memoizes model artifacts by model ID, reloading only when
// explicitly invalidated (Model activation/deactivation does not change the
// artifact bytes, so a cache entry is valid for the process lifetime once
// loaded).
type Cache struct {
	modelDir string

	mu   sync.RWMutex
	byID map[int64]*Artifact
}

func NewCache(modelDir string) *Cache {
	return &Cache{modelDir: modelDir, byID: make(map[int64]*Artifact)}
}

// Load returns the cached artifact for modelID, reading it from disk on
// first use.
func (c *Cache) Load(model *entity.Model) (*Artifact, error) {
	c.mu.RLock()
	if a, ok := c.byID[model.ID]; ok {
		c.mu.RUnlock()
		return a, nil
	}
	c.mu.RUnlock()

	path := entity.ArtifactPath(c.modelDir, model.ID)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact %s: %w", path, err)
	}
	defer f.Close()

	artifact, err := DecodeArtifact(f)
	if err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}

	c.mu.Lock()
	c.byID[model.ID] = artifact
	c.mu.Unlock()
	return artifact, nil
}

// Invalidate drops a cached artifact, forcing the next Load to re-read it
// from disk (used after `models import`/`models activate` replace a file).
func (c *Cache) Invalidate(modelID int64) {
	c.mu.Lock()
	delete(c.byID, modelID)
	c.mu.Unlock()
}
