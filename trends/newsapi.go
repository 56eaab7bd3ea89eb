package trends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultNewsAPIBase = "https://newsapi.org"

// StatusError reports a non-success response from a headline API.
type StatusError struct {
	Source     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Source, e.StatusCode)
}

// NewsAPI reads top headlines from newsapi.org.
type NewsAPI struct {
	APIKey  string
	Country string
	BaseURL string
	Client  *http.Client
}

type headlinesResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title string `json:"title"`
	} `json:"articles"`
}

// NewNewsAPI creates a NewsAPI source for the given key and country.
func NewNewsAPI(apiKey, country string, timeout time.Duration) *NewsAPI {
	if country == "" {
		country = "us"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &NewsAPI{
		APIKey:  apiKey,
		Country: country,
		BaseURL: defaultNewsAPIBase,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (n *NewsAPI) Name() string { return "newsapi" }

// Topics issues a single top-headlines request. A non-success status is
// returned as *StatusError; callers treat it as "no topics".
func (n *NewsAPI) Topics(ctx context.Context) ([]string, error) {
	endpoint, err := n.endpoint()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi: build request: %w", err)
	}
	req.Header.Set("User-Agent", "autoblog/1.0")

	resp, err := n.Client.Do(req)
	if err != nil {
		// url.Error carries the full URL, which includes the key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return nil, fmt.Errorf("newsapi: request failed: %w", uerr.Err)
		}
		return nil, fmt.Errorf("newsapi: request failed: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			slog.Warn("failed to close response body", "source", n.Name(), "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Source: n.Name(), StatusCode: resp.StatusCode}
	}

	var body headlinesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("newsapi: decode response: %w", err)
	}

	titles := make([]string, 0, len(body.Articles))
	for _, a := range body.Articles {
		titles = append(titles, a.Title)
	}
	topics := ExtractTopics(titles)
	slog.Info("fetched headlines", "source", n.Name(), "articles", len(titles), "topics", len(topics))
	return topics, nil
}

func (n *NewsAPI) endpoint() (string, error) {
	base := n.BaseURL
	if base == "" {
		base = defaultNewsAPIBase
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("newsapi: invalid base url: %w", err)
	}
	u = u.JoinPath("v2", "top-headlines")
	q := u.Query()
	q.Set("country", n.Country)
	q.Set("apiKey", n.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
