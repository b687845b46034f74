// Package fetcher implements the FeedFetcher component (C2): it polls
// configured feed sources, parses entries tolerantly, and normalizes them
// to candidate entity.Article values. It never writes to the store itself
// — candidates are handed to the Deduper.
package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"papersorter/internal/domain/entity"
	"papersorter/internal/resilience/circuitbreaker"
	"papersorter/internal/resilience/retry"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// maxFallbackLinks bounds how many candidates the HTML fallback extractor
// produces from a single page, so a pathological document can't flood a
// source with thousands of bogus candidates.
const maxFallbackLinks = 100

// RSSFetcher parses RSS/Atom feeds with gofeed, falling back to a
// permissive HTML link extractor when the feed itself fails to parse.
// Circuit breaker and retry wrap the network call; per spec §4.2 there is
// no back-off beyond the polling interval once a source has been marked
// checked, so both only bound a single fetch attempt.
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewRSSFetcher creates an RSSFetcher using client for outbound requests.
func NewRSSFetcher(client *http.Client) *RSSFetcher {
	return &RSSFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// Fetch retrieves feedURL and returns candidate Articles. origin names the
// configured FeedSource (used to populate Article.Origin).
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL, origin string) ([]*entity.Article, error) {
	var articles []*entity.Article

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, feedURL, origin)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("service", "feed-fetch"),
					slog.String("url", feedURL),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}
		articles = cbResult.([]*entity.Article)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return articles, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
// It tries gofeed first; on parse failure it falls back to a permissive
// HTML link extraction pass over the same payload, per spec §4.2 "fall
// back to a simpler extractor if the primary parser rejects the payload".
func (f *RSSFetcher) doFetch(ctx context.Context, feedURL, origin string) ([]*entity.Article, error) {
	body, err := f.fetchBody(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	fp := gofeed.NewParser()
	fp.UserAgent = "PaperSorterBot/1.0"
	feed, err := fp.ParseString(string(body))
	if err != nil {
		slog.Warn("primary feed parser rejected payload, falling back to HTML extraction",
			slog.String("url", feedURL),
			slog.Any("error", err))
		return extractFallbackCandidates(body, feedURL, origin)
	}

	articles := make([]*entity.Article, 0, len(feed.Items))
	for _, it := range feed.Items {
		articles = append(articles, itemToArticle(it, origin))
	}
	return articles, nil
}

func (f *RSSFetcher) fetchBody(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "PaperSorterBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	buf := make([]byte, 0, 64*1024)
	chunk := make([]byte, 32*1024)
	for {
		n, rerr := resp.Body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if rerr != nil {
			break
		}
	}
	return buf, nil
}

// itemToArticle converts a gofeed item to a candidate Article. ExternalID
// prefers the feed's GUID (stable across re-fetches) and falls back to the
// link when no GUID is present.
func itemToArticle(it *gofeed.Item, origin string) *entity.Article {
	externalID := it.GUID
	if externalID == "" {
		externalID = it.Link
	}

	content := it.Content
	if content == "" {
		content = it.Description
	}

	publishedAt := time.Now()
	if it.PublishedParsed != nil {
		publishedAt = *it.PublishedParsed
	} else if it.UpdatedParsed != nil {
		publishedAt = *it.UpdatedParsed
	}

	return &entity.Article{
		ExternalID:  externalID,
		Title:       it.Title,
		Content:     content,
		Authors:     joinAuthors(it),
		Origin:      origin,
		Link:        it.Link,
		PublishedAt: publishedAt,
	}
}

func joinAuthors(it *gofeed.Item) string {
	if len(it.Authors) > 0 {
		names := make([]string, 0, len(it.Authors))
		for _, a := range it.Authors {
			if a != nil && a.Name != "" {
				names = append(names, a.Name)
			}
		}
		return strings.Join(names, ", ")
	}
	if it.Author != nil {
		return it.Author.Name
	}
	return ""
}

// extractFallbackCandidates treats body as arbitrary HTML and pulls out
// anchors that look like article links: non-empty link text, an absolute
// href, and a distinct URL per candidate. It is deliberately permissive —
// it has no knowledge of the page's structure — so candidates it produces
// still pass through Deduper before ever reaching the store.
func extractFallbackCandidates(body []byte, sourceURL, origin string) ([]*entity.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var articles []*entity.Article
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(articles) >= maxFallbackLinks {
			return false
		}
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		title := strings.TrimSpace(sel.Text())
		if href == "" || title == "" || seen[href] {
			return true
		}
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			return true
		}
		seen[href] = true
		articles = append(articles, &entity.Article{
			ExternalID:  href,
			Title:       title,
			Link:        href,
			Origin:      origin,
			PublishedAt: time.Now(),
		})
		return true
	})

	if len(articles) == 0 {
		return nil, errors.New("fallback extraction found no candidate links in " + sourceURL)
	}
	return articles, nil
}
