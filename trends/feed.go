package trends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Feed reads topics from the item titles of an RSS or Atom feed, such as a
// trending-searches feed. It needs no API key.
type Feed struct {
	URL    string
	parser *gofeed.Parser
}

// NewFeed creates a feed source for url.
func NewFeed(url string, timeout time.Duration) *Feed {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "autoblog/1.0"
	return &Feed{URL: url, parser: parser}
}

func (f *Feed) Name() string { return "feed" }

// Topics fetches and parses the feed once.
func (f *Feed) Topics(ctx context.Context) ([]string, error) {
	if f.URL == "" {
		return nil, fmt.Errorf("feed: no url configured")
	}
	feed, err := f.parser.ParseURLWithContext(f.URL, ctx)
	if err != nil {
		var herr gofeed.HTTPError
		if errors.As(err, &herr) {
			return nil, &StatusError{Source: f.Name(), StatusCode: herr.StatusCode}
		}
		return nil, fmt.Errorf("feed: parse %s: %w", f.URL, err)
	}

	titles := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		titles = append(titles, item.Title)
	}
	topics := ExtractTopics(titles)
	slog.Info("fetched feed", "source", f.Name(), "url", f.URL, "items", len(titles), "topics", len(topics))
	return topics, nil
}
