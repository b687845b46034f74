// Package scoredarticle provides a read-only JSON listing of scored articles
// for the external UI layer to consume (C11, spec's excluded HTML UI
// consumes this surface rather than shipping it here).
package scoredarticle

import (
	"time"

	"papersorter/internal/repository"
)

// DTO represents one scored article row.
type DTO struct {
	ArticleID   int64     `json:"article_id"`
	Title       string    `json:"title"`
	Origin      string    `json:"origin"`
	Authors     string    `json:"authors"`
	Link        string    `json:"link"`
	TLDR        string    `json:"tldr,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Score       float64   `json:"score"`
}

func toDTO(sa repository.ScoredArticle) DTO {
	return DTO{
		ArticleID:   sa.Article.ID,
		Title:       sa.Article.Title,
		Origin:      sa.Article.Origin,
		Authors:     sa.Article.Authors,
		Link:        sa.Article.Link,
		TLDR:        sa.Article.TLDR,
		PublishedAt: sa.Article.PublishedAt,
		Score:       sa.Score,
	}
}
