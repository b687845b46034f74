// Package preference implements PreferenceStore (C9): label capture and
// the labeled-set view training consumers read, including the
// pseudo-negative sampling contract for cold-start training sets.
package preference

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// DefaultPseudoNegativeWeight is the default weight applied to sampled
// pseudo-negatives when a labeled set contains only positive examples
// (spec §4.9: "configurable weight <= 1").
const DefaultPseudoNegativeWeight = 0.5

// Store wraps PreferenceRepository with the label/labeledSet contract.
type Store struct {
	preferences repository.PreferenceRepository
	articles    repository.ArticleRepository
}

func New(preferences repository.PreferenceRepository, articles repository.ArticleRepository) *Store {
	return &Store{preferences: preferences, articles: articles}
}

// Label appends a new Preference row; the repository is append-only, so
// relabeling never deletes the prior row.
func (s *Store) Label(ctx context.Context, articleID, userID int64, score int, source entity.PreferenceSource) error {
	pref := &entity.Preference{
		ArticleID: articleID,
		UserID:    userID,
		Score:     score,
		Source:    source,
	}
	if err := pref.Validate(); err != nil {
		return fmt.Errorf("preference.Label: %w", err)
	}
	if err := s.preferences.Label(ctx, pref); err != nil {
		return fmt.Errorf("preference.Label: %w", err)
	}
	return nil
}

// LabeledSet returns the latest-per-(article,user) rows matching filter.
func (s *Store) LabeledSet(ctx context.Context, filter repository.PreferenceFilter) ([]*entity.Preference, error) {
	prefs, err := s.preferences.LabeledSet(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("preference.LabeledSet: %w", err)
	}
	return prefs, nil
}

// TrainingExample is a labeled or pseudo-labeled article ready for training.
type TrainingExample struct {
	ArticleID int64
	Label     float64 // 1.0 positive, 0.0 negative
	Weight    float64 // 1.0 for explicit labels, < 1.0 for pseudo-negatives
}

// BuildTrainingSet returns explicit labels plus, when the filtered set is
// positive-only, a sample of unlabeled articles treated as pseudo-negatives
// at weight (spec §4.9's initial-training contract). poolSize bounds how
// many unlabeled articles are sampled from.
func (s *Store) BuildTrainingSet(ctx context.Context, filter repository.PreferenceFilter, weight float64, poolSize int) ([]TrainingExample, error) {
	if weight <= 0 || weight > 1 {
		weight = DefaultPseudoNegativeWeight
	}

	labeled, err := s.LabeledSet(ctx, filter)
	if err != nil {
		return nil, err
	}

	examples := make([]TrainingExample, 0, len(labeled))
	labeledIDs := make(map[int64]bool, len(labeled))
	hasNegative := false
	for _, p := range labeled {
		examples = append(examples, TrainingExample{
			ArticleID: p.ArticleID,
			Label:     float64(p.Score),
			Weight:    1.0,
		})
		labeledIDs[p.ArticleID] = true
		if p.Score == 0 {
			hasNegative = true
		}
	}

	if hasNegative || len(examples) == 0 {
		return examples, nil
	}

	pseudo, err := s.samplePseudoNegatives(ctx, labeledIDs, poolSize)
	if err != nil {
		return nil, err
	}
	for _, articleID := range pseudo {
		examples = append(examples, TrainingExample{ArticleID: articleID, Label: 0.0, Weight: weight})
	}
	return examples, nil
}

// samplePseudoNegatives draws up to len(labeledIDs) unlabeled articles at
// random from a candidate pool, excluding anything already labeled.
func (s *Store) samplePseudoNegatives(ctx context.Context, labeledIDs map[int64]bool, poolSize int) ([]int64, error) {
	if poolSize <= 0 {
		poolSize = 1000
	}
	// Reuses the Deduper's lookup (ArticleRepository has no general listing
	// method); a zero-value `since` makes it return the whole store, newest
	// first, up to poolSize.
	pool, err := s.articles.FindRecentByNormalizedTitle(ctx, time.Time{}, poolSize)
	if err != nil {
		return nil, fmt.Errorf("samplePseudoNegatives: %w", err)
	}

	candidates := make([]int64, 0, len(pool))
	for _, a := range pool {
		if !labeledIDs[a.ID] {
			candidates = append(candidates, a.ID)
		}
	}

	n := len(labeledIDs)
	if n > len(candidates) {
		n = len(candidates)
	}
	rand.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	return candidates[:n], nil
}
